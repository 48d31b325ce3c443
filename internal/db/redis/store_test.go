package redis

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/thoughtstream/auditweb/internal/db"
)

// --- client.go tests ---

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewStore_RequiresAddrs(t *testing.T) {
	if _, err := NewStore(Config{}); err == nil {
		t.Fatal("expected error for empty addrs")
	}
}

func TestIsRedisErr(t *testing.T) {
	msg := mock.RedisError("Index Already Exists")
	redisErr := msg.Error()
	if !isRedisErr(redisErr, "index already exists") {
		t.Error("expected case-insensitive match")
	}
	if isRedisErr(redisErr, "unknown index name") {
		t.Error("unexpected match")
	}
	if isRedisErr(errors.New("index already exists"), "index already exists") {
		t.Error("non-redis errors must not match")
	}
}

// --- hash.go tests ---

func TestHSet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "HSET" && cmd[1] == "audit:1"
		})).
		Return(mock.Result(mock.RedisInt64(1)))

	s := NewStoreForTest(c)
	err := s.HSet(context.Background(), "audit:1", map[string]string{"__who": "alice"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHSet_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "HSET"
		})).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	err := s.HSet(context.Background(), "audit:1", map[string]string{"f": "v"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %T", err)
	}
}

func TestHGetAll_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("HGETALL", "audit:1")).
		Return(mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{
			"__who":  mock.RedisString("alice"),
			"__when": mock.RedisString("1700000000000"),
		})))

	s := NewStoreForTest(c)
	m, err := s.HGetAll(context.Background(), "audit:1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m["__who"] != "alice" || m["__when"] != "1700000000000" {
		t.Errorf("unexpected map: %v", m)
	}
}

func TestHGetAll_Missing(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("HGETALL", "audit:missing")).
		Return(mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{})))

	s := NewStoreForTest(c)
	_, err := s.HGetAll(context.Background(), "audit:missing")
	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestHGetAll_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("HGETALL", "audit:1")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	_, err := s.HGetAll(context.Background(), "audit:1")
	if err == nil {
		t.Fatal("expected error")
	}
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %T", err)
	}
}

func TestDel_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("DEL", "audit:1")).
		Return(mock.Result(mock.RedisInt64(1)))

	s := NewStoreForTest(c)
	if err := s.Del(context.Background(), "audit:1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDel_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("DEL", "audit:missing")).
		Return(mock.Result(mock.RedisInt64(0)))

	s := NewStoreForTest(c)
	err := s.Del(context.Background(), "audit:missing")
	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestDel_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("DEL", "audit:1")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	err := s.Del(context.Background(), "audit:1")
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %T", err)
	}
}

func TestExists_True(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("EXISTS", "audit:1")).
		Return(mock.Result(mock.RedisInt64(1)))

	s := NewStoreForTest(c)
	ok, err := s.Exists(context.Background(), "audit:1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected true")
	}
}

func TestExists_False(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("EXISTS", "audit:1")).
		Return(mock.Result(mock.RedisInt64(0)))

	s := NewStoreForTest(c)
	ok, err := s.Exists(context.Background(), "audit:1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected false")
	}
}

// --- index.go tests ---

func TestCreateIndex_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match(
			"FT.CREATE", "audit:idx", "ON", "HASH", "PREFIX", "1", "audit:",
			"SCHEMA", "__paths", "TAG", "SEPARATOR", "|", "CASESENSITIVE",
			"__when", "NUMERIC", "SORTABLE",
		)).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c)
	idx := db.NewIndex("audit:idx").
		Prefix("audit:").
		TagWithOpts("__paths", "|", true).
		SortableNumeric("__when").
		MustBuild()
	if err := s.CreateIndex(context.Background(), idx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateIndex_AlreadyExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE"
		})).
		Return(mock.Result(mock.RedisError("Index already exists")))

	s := NewStoreForTest(c)
	idx := &db.IndexDefinition{
		Name:   "audit:idx",
		Fields: []db.IndexField{{Name: "f", Type: db.IndexFieldTag}},
	}
	err := s.CreateIndex(context.Background(), idx)
	if !errors.Is(err, db.ErrIndexExists) {
		t.Errorf("expected ErrIndexExists, got %v", err)
	}
}

func TestCreateIndex_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE"
		})).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	idx := &db.IndexDefinition{
		Name:   "audit:idx",
		Fields: []db.IndexField{{Name: "f", Type: db.IndexFieldTag}},
	}
	err := s.CreateIndex(context.Background(), idx)
	if err == nil {
		t.Fatal("expected error")
	}
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %T", err)
	}
}

func TestIndexExists_True(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "audit:idx")).
		Return(mock.Result(mock.RedisArray(mock.RedisString("index_name"), mock.RedisString("audit:idx"))))

	s := NewStoreForTest(c)
	exists, err := s.IndexExists(context.Background(), "audit:idx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exists {
		t.Error("expected true")
	}
}

func TestIndexExists_False(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "audit:idx")).
		Return(mock.Result(mock.RedisError("Unknown Index name")))

	s := NewStoreForTest(c)
	exists, err := s.IndexExists(context.Background(), "audit:idx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists {
		t.Error("expected false")
	}
}

func TestBuildCreateArgs_Validation(t *testing.T) {
	_, err := buildCreateArgs(&db.IndexDefinition{Name: "", Fields: []db.IndexField{{Name: "f", Type: db.IndexFieldTag}}})
	if err == nil {
		t.Error("expected error for empty name")
	}

	_, err = buildCreateArgs(&db.IndexDefinition{Name: "test"})
	if err == nil {
		t.Error("expected error for empty fields")
	}
}

func TestBuildFieldArgs_AllTypes(t *testing.T) {
	tests := []struct {
		name  string
		field db.IndexField
		want  []string
	}{
		{"tag", db.IndexField{Name: "f", Type: db.IndexFieldTag}, []string{"f", "TAG"}},
		{"numeric", db.IndexField{Name: "f", Type: db.IndexFieldNumeric}, []string{"f", "NUMERIC"}},
		{
			"tag_with_separator",
			db.IndexField{Name: "f", Type: db.IndexFieldTag, TagSeparator: "|"},
			[]string{"f", "TAG", "SEPARATOR", "|"},
		},
		{
			"tag_case_sensitive",
			db.IndexField{Name: "f", Type: db.IndexFieldTag, TagCaseSensitive: true},
			[]string{"f", "TAG", "CASESENSITIVE"},
		},
		{
			"sortable_numeric",
			db.IndexField{Name: "f", Type: db.IndexFieldNumeric, Sortable: true},
			[]string{"f", "NUMERIC", "SORTABLE"},
		},
		{
			"alias",
			db.IndexField{Name: "$.who", Alias: "who", Type: db.IndexFieldTag},
			[]string{"$.who", "AS", "who", "TAG"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			args, err := buildFieldArgs(&tc.field)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(args, tc.want) {
				t.Errorf("args = %v, want %v", args, tc.want)
			}
		})
	}
}

func TestBuildFieldArgs_Errors(t *testing.T) {
	_, err := buildFieldArgs(&db.IndexField{Name: "", Type: db.IndexFieldTag})
	if err == nil {
		t.Error("expected error for empty field name")
	}

	_, err = buildFieldArgs(&db.IndexField{Name: "f", Type: db.IndexFieldType(99)})
	if err == nil {
		t.Error("expected error for unknown type")
	}
}

// --- search.go tests ---

func TestSearchList_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match(
			"FT.SEARCH", "audit:idx", `@__paths:{\/user}`,
			"RETURN", "2", "__who", "__when",
			"SORTBY", "__when", "DESC",
			"LIMIT", "0", "10",
			"DIALECT", "2",
		)).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(2),
			mock.RedisString("audit:1"),
			mock.RedisArray(mock.RedisString("__who"), mock.RedisString("alice")),
			mock.RedisString("audit:2"),
			mock.RedisArray(mock.RedisString("__who"), mock.RedisString("bob")),
		)))

	s := NewStoreForTest(c)
	result, err := s.SearchList(context.Background(), &db.ListQuery{
		IndexName:    "audit:idx",
		Filters:      []db.TagFilter{{Field: "__paths", Value: "/user"}},
		Offset:       0,
		Limit:        10,
		ReturnFields: []string{"__who", "__when"},
		SortBy:       "__when",
		SortDesc:     true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 2 {
		t.Fatalf("expected total 2, got %d", result.Total)
	}
	if len(result.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(result.Entries))
	}
	if result.Entries[0].Key != "audit:1" || result.Entries[0].Fields["__who"] != "alice" {
		t.Errorf("unexpected first entry: %+v", result.Entries[0])
	}
	if result.Entries[1].Fields["__who"] != "bob" {
		t.Errorf("unexpected second entry: %+v", result.Entries[1])
	}
}

func TestSearchList_NoFiltersMatchesAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.SEARCH", "audit:idx", "*", "LIMIT", "5", "5", "DIALECT", "2")).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	s := NewStoreForTest(c)
	result, err := s.SearchList(context.Background(), &db.ListQuery{IndexName: "audit:idx", Offset: 5, Limit: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 0 || len(result.Entries) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}

func TestSearchList_Validation(t *testing.T) {
	s := &Store{}
	tests := []struct {
		name string
		q    db.ListQuery
	}{
		{"no index", db.ListQuery{Limit: 1}},
		{"negative offset", db.ListQuery{IndexName: "i", Offset: -1, Limit: 1}},
		{"zero limit", db.ListQuery{IndexName: "i"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.SearchList(context.Background(), &tc.q); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestSearchList_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	_, err := s.SearchList(context.Background(), &db.ListQuery{IndexName: "audit:idx", Limit: 10})
	if !isDBError(err) {
		t.Fatalf("expected db.Error, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected wrapped deadline error, got %v", err)
	}
}

// --- query building tests ---

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name    string
		filters []db.TagFilter
		want    string
	}{
		{"empty", nil, "*"},
		{"single", []db.TagFilter{{Field: "__who", Value: "alice"}}, "@__who:{alice}"},
		{"path", []db.TagFilter{{Field: "__paths", Value: "/user/name"}}, `@__paths:{\/user\/name}`},
		{
			"combined",
			[]db.TagFilter{{Field: "__paths", Value: "/user"}, {Field: "__who", Value: "john doe"}},
			`@__paths:{\/user} @__who:{john\ doe}`,
		},
		{"punctuation", []db.TagFilter{{Field: "f", Value: "a-b.c|d"}}, `@f:{a\-b\.c\|d}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := buildQuery(tc.filters); got != tc.want {
				t.Errorf("buildQuery() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParseListResult_SkipsMalformedEntries(t *testing.T) {
	raw := []rueidis.RedisMessage{
		mock.RedisInt64(2),
		mock.RedisString("audit:1"),
		mock.RedisString("not-an-array"),
		mock.RedisString("audit:2"),
		mock.RedisArray(mock.RedisString("__who"), mock.RedisString("bob")),
	}
	res, err := parseListResult(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 2 {
		t.Errorf("total = %d, want 2", res.Total)
	}
	if len(res.Entries) != 1 || res.Entries[0].Key != "audit:2" {
		t.Errorf("unexpected entries: %+v", res.Entries)
	}
}

func isDBError(err error) bool {
	var dbErr *db.Error
	return errors.As(err, &dbErr)
}
