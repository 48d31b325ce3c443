package auditweb

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	password string

	keyPrefix  string
	database   string
	collection string

	maxLimit int
}

func defaultConfig() *clientConfig {
	return &clientConfig{
		keyPrefix:  "auditweb:",
		database:   "AuditObjects",
		collection: "defCollection",
		maxLimit:   100,
	}
}

// WithRedis configures the client to connect to a Redis 8 or Valkey instance
// with the search module loaded.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithCluster configures multiple seed addresses.
func WithCluster(password string, addrs ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = addrs
		c.password = password
	})
}

// WithCollection selects where records are stored. Empty values keep the defaults
// ("auditweb:", "AuditObjects", "defCollection").
func WithCollection(keyPrefix, database, collection string) Option {
	return optionFunc(func(c *clientConfig) {
		if keyPrefix != "" {
			c.keyPrefix = keyPrefix
		}
		if database != "" {
			c.database = database
		}
		if collection != "" {
			c.collection = collection
		}
	})
}

// WithMaxLimit caps the page size accepted by Search. Default: 100.
func WithMaxLimit(limit int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxLimit = limit
	})
}
