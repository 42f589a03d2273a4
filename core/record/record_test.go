package record

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/asaidimu/go-fieldguard/core/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const sampleRow = "id:1,username:alice,created_at:2020,profile_url:http://x"

func sampleTable() metadata.Table {
	return metadata.Table{
		"1":        "42",
		"alice":    "Alice",
		"2020":     "2020-03-15",
		"http://x": "http://x",
	}
}

func TestParseRow(t *testing.T) {
	tests := []struct {
		name     string
		row      string
		expected map[string]string
		err      error
	}{
		{
			name: "sample",
			row:  sampleRow,
			expected: map[string]string{
				"id":          "1",
				"username":    "alice",
				"created_at":  "2020",
				"profile_url": "http://x",
			},
		},
		{"value_with_separator", "a:b:c", map[string]string{"a": "b:c"}, nil},
		{"empty_value", "a:", map[string]string{"a": ""}, nil},
		{"duplicate_last_wins", "a:1,a:2", map[string]string{"a": "2"}, nil},
		{"missing_separator", "a:1,b", nil, ErrMalformedRow},
		{"empty_row", "", nil, ErrMalformedRow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, err := ParseRow(tt.row)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, fields)
		})
	}
}

func TestIssue_TypedFields(t *testing.T) {
	issue := NewIssue(sampleRow, sampleTable(), nil)

	id, err := issue.ID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	username, err := issue.Username()
	require.NoError(t, err)
	assert.Equal(t, "Alice", username)

	createdAt, err := issue.CreatedAt()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, time.January, 15, 0, 3, 0, 0, time.UTC), createdAt)

	profile, err := issue.ProfileURL()
	require.NoError(t, err)
	assert.Equal(t, "http", profile.Scheme)
	assert.Equal(t, "x", profile.Host)
}

func TestRecord_NoCaching(t *testing.T) {
	issue := NewIssue(sampleRow, sampleTable(), nil)
	assert.Equal(t, int64(0), issue.Parses())

	_, err := issue.ID()
	require.NoError(t, err)
	_, err = issue.ID()
	require.NoError(t, err)
	assert.Equal(t, int64(2), issue.Parses())

	_, _ = issue.Username()
	assert.Equal(t, int64(3), issue.Parses())
}

func TestRecord_ResolvesAgainstCurrentTable(t *testing.T) {
	table := sampleTable()
	issue := NewIssue(sampleRow, table, nil)

	username, err := issue.Username()
	require.NoError(t, err)
	assert.Equal(t, "Alice", username)

	table["alice"] = "Alicia"
	username, err = issue.Username()
	require.NoError(t, err)
	assert.Equal(t, "Alicia", username)
}

func TestField_Errors(t *testing.T) {
	tests := []struct {
		name  string
		row   string
		table metadata.Table
		get   func(Issue) error
		err   error
	}{
		{
			name:  "key_missing_from_row",
			row:   "username:alice",
			table: sampleTable(),
			get:   func(i Issue) error { _, err := i.ID(); return err },
			err:   ErrFieldNotFound,
		},
		{
			name:  "value_missing_from_metadata",
			row:   "id:9",
			table: sampleTable(),
			get:   func(i Issue) error { _, err := i.ID(); return err },
			err:   metadata.ErrKeyNotFound,
		},
		{
			name:  "malformed_row",
			row:   "id",
			table: sampleTable(),
			get:   func(i Issue) error { _, err := i.ID(); return err },
			err:   ErrMalformedRow,
		},
		{
			name:  "malformed_integer",
			row:   "id:1",
			table: metadata.Table{"1": "forty-two"},
			get:   func(i Issue) error { _, err := i.ID(); return err },
			err:   ErrCoercion,
		},
		{
			name:  "malformed_date",
			row:   "created_at:2020",
			table: metadata.Table{"2020": "15/03/2020"},
			get:   func(i Issue) error { _, err := i.CreatedAt(); return err },
			err:   ErrCoercion,
		},
		{
			name:  "date_not_a_string",
			row:   "created_at:2020",
			table: metadata.Table{"2020": float64(2020)},
			get:   func(i Issue) error { _, err := i.CreatedAt(); return err },
			err:   ErrCoercion,
		},
		{
			name:  "url_not_a_string",
			row:   "profile_url:p",
			table: metadata.Table{"p": nil},
			get:   func(i Issue) error { _, err := i.ProfileURL(); return err },
			err:   ErrCoercion,
		},
		{
			name:  "invalid_url",
			row:   "profile_url:p",
			table: metadata.Table{"p": "http://[::1"},
			get:   func(i Issue) error { _, err := i.ProfileURL(); return err },
			err:   ErrCoercion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.get(NewIssue(tt.row, tt.table, nil))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)

			var ferr *FieldError
			require.True(t, errors.As(err, &ferr))
			assert.NotEmpty(t, ferr.Field)
		})
	}
}

func TestField_NumericMetadata(t *testing.T) {
	table := metadata.Table{"1": float64(42), "alice": float64(7)}
	issue := NewIssue("id:1,username:alice", table, nil)

	id, err := issue.ID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	username, err := issue.Username()
	require.NoError(t, err)
	assert.Equal(t, "7", username)
}

func TestNewField_Custom(t *testing.T) {
	upper := NewField[string]("username", Kind("upper"), func(v any) (string, error) {
		s, ok := v.(string)
		if !ok {
			return "", ErrCoercion
		}
		return strings.ToUpper(s), nil
	})

	v, err := upper.Get(New(sampleRow, sampleTable()))
	require.NoError(t, err)
	assert.Equal(t, "ALICE", v)
}

func TestRecord_ObserverAndLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	var accesses []Access
	issue := NewIssue("id:1,username:bob", sampleTable(), &Options{
		Logger:   zap.New(core),
		Observer: func(a Access) { accesses = append(accesses, a) },
	})

	_, _ = issue.ID()
	_, _ = issue.Username()

	require.Len(t, accesses, 2)
	assert.Equal(t, issue.Ref(), accesses[0].Record)
	assert.Equal(t, KindInteger, accesses[0].Kind)
	assert.Equal(t, int64(42), accesses[0].Value)
	assert.NoError(t, accesses[0].Err)
	assert.ErrorIs(t, accesses[1].Err, metadata.ErrKeyNotFound)

	assert.Equal(t, 1, logs.FilterMessage("Field resolution failed").Len())
}

func TestReadAll(t *testing.T) {
	input := sampleRow + "\n\n  id:2,username:bob  \n"
	issues, err := ReadAll(strings.NewReader(input), sampleTable(), nil)
	require.NoError(t, err)
	require.Len(t, issues, 2)

	assert.Equal(t, sampleRow, issues[0].Row())
	assert.Equal(t, "id:2,username:bob", issues[1].Row())
	assert.NotEqual(t, issues[0].Ref(), issues[1].Ref())

	_, err = issues[1].ID()
	assert.ErrorIs(t, err, metadata.ErrKeyNotFound)
}

func TestReadAll_LongRow(t *testing.T) {
	name := strings.Repeat("a", 70000)
	input := "id:1,username:" + name + "\nid:1"
	table := metadata.Table{"1": "42", name: "Long"}

	issues, err := ReadAll(strings.NewReader(input), table, nil)
	require.NoError(t, err)
	require.Len(t, issues, 2)

	username, err := issues[0].Username()
	require.NoError(t, err)
	assert.Equal(t, "Long", username)

	id, err := issues[1].ID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestReadAll_ReaderError(t *testing.T) {
	_, err := ReadAll(iotest.ErrReader(errors.New("disk gone")), sampleTable(), nil)
	assert.ErrorContains(t, err, "disk gone")
}

func TestField_LargeIntegerFromJSON(t *testing.T) {
	table, err := metadata.Decode(strings.NewReader(`{"1": 9007199254740993}`))
	require.NoError(t, err)

	id, err := NewIssue("id:1", table, nil).ID()
	require.NoError(t, err)
	assert.Equal(t, int64(9007199254740993), id)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(t.TempDir()+"/issues.csv", sampleTable(), nil)
	assert.Error(t, err)
}
