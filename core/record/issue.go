package record

import (
	"net/url"
	"time"

	"github.com/asaidimu/go-fieldguard/core/metadata"
)

// Fields of an issue row.
var (
	IssueID         = Int("id")
	IssueUsername   = String("username")
	IssueCreatedAt  = Date("created_at")
	IssueProfileURL = URL("profile_url")
)

// Issue is a row of an issues file, e.g.
//
//	id:1,username:alice,created_at:2020,profile_url:http://x
type Issue struct {
	*Record
}

// NewIssue binds row to table as an Issue.
func NewIssue(row string, table metadata.Table, options *Options) Issue {
	return Issue{Record: NewWithOptions(row, table, options)}
}

// ID resolves the "id" field as an integer.
func (i Issue) ID() (int64, error) { return IssueID.Get(i.Record) }

// Username resolves the "username" field as a string.
func (i Issue) Username() (string, error) { return IssueUsername.Get(i.Record) }

// CreatedAt resolves the "created_at" field as a date.
func (i Issue) CreatedAt() (time.Time, error) { return IssueCreatedAt.Get(i.Record) }

// ProfileURL resolves the "profile_url" field as a parsed URL.
func (i Issue) ProfileURL() (*url.URL, error) { return IssueProfileURL.Get(i.Record) }
