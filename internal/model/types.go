package model

import "strings"

// Credentials identify the dashboard login. Never persisted.
type Credentials struct {
	Handle string
	Secret string
}

// String keeps the secret out of logs.
func (c Credentials) String() string {
	return c.Handle + ":" + strings.Repeat("*", min(len(c.Secret), 8))
}

// ExportStatus is the status field returned by the export endpoint.
type ExportStatus string

const StatusPending ExportStatus = "Pending"

// DefaultReadyStatuses are the statuses after which the bundle can be fetched.
var DefaultReadyStatuses = []string{"Available", "Ready", "Complete", "Completed"}

// IsPending reports whether the export is still being compiled.
func (s ExportStatus) IsPending() bool {
	return strings.EqualFold(string(s), string(StatusPending))
}

// IsReady reports whether s is one of ready (case-insensitive).
func (s ExportStatus) IsReady(ready []string) bool {
	for _, r := range ready {
		if strings.EqualFold(strings.TrimSpace(string(s)), r) {
			return true
		}
	}
	return false
}

// Row is one exported record; row 0 of a payload is the header.
type Row []string

// ColumnType is the SQLite affinity used for a report column.
type ColumnType string

const (
	TypeText    ColumnType = "text"
	TypeInteger ColumnType = "integer"
	TypeNumeric ColumnType = "numeric"
	TypeDate    ColumnType = "date"
)

// Column is one field of the tweet activity report.
type Column struct {
	Name string
	Type ColumnType
}

var organicMetrics = []Column{
	{"impressions", TypeInteger},
	{"engagements", TypeInteger},
	{"engagement_rate", TypeNumeric},
	{"retweets", TypeInteger},
	{"replies", TypeInteger},
	{"likes", TypeInteger},
	{"user_profile_clicks", TypeInteger},
	{"url_clicks", TypeInteger},
	{"hashtag_clicks", TypeInteger},
	{"detail_expands", TypeInteger},
	{"permalink_clicks", TypeInteger},
	{"app_opens", TypeInteger},
	{"app_installs", TypeInteger},
	{"follows", TypeInteger},
	{"email_tweet", TypeText},
	{"dial_phone", TypeText},
	{"media_views", TypeInteger},
	{"media_engagements", TypeInteger},
}

// ReportColumns is the fixed schema of the exported report: identifying
// columns, organic metrics, then the promoted variant of each metric.
var ReportColumns = buildReportColumns()

func buildReportColumns() []Column {
	cols := []Column{
		{"tweet_id", TypeText},
		{"tweet_permalink", TypeText},
		{"tweet_text", TypeText},
		{"time", TypeDate},
	}
	cols = append(cols, organicMetrics...)
	for _, m := range organicMetrics {
		cols = append(cols, Column{Name: "promoted_" + m.Name, Type: m.Type})
	}
	return cols
}

// ColumnNames returns the names of cols in order.
func ColumnNames(cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out
}
