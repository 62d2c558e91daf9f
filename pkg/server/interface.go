/*
Package server implements msgpack IPC over a built like index.

The candidate list is indexed once at startup and kept in memory, so every
request is a lookup against the same read-only tree. Clients write msgpack
values to stdin and read one msgpack response per request from stdout.
Logs go to stderr.

# IPC

Every request carries an ID that is echoed in the response. The action
field selects the operation; an empty action means "match".

Match a pattern against the index:

	{"id": "req_001", "p": "TE--", "n": 1}

The server responds with the matched strings, best first:

	{"id": "req_001", "m": [{"w": "T", "r": 1}], "c": 1, "t": 12}

An empty "m" means nothing matched; that is not an error.

Other actions:

	{"id": "req_002", "action": "contains", "p": "TEST"}
	{"id": "req_003", "action": "similar", "p": "TE", "n": 10}
	{"id": "req_004", "action": "info"}
	{"id": "req_005", "action": "reload"}

"contains" is an exact lookup, "similar" lists indexed strings starting
with the pattern in the order they were indexed, "reload" re-reads the
candidate list and config and swaps the index.

Failed requests get an error reply with a status code:

	{"id": "req_006", "e": "pattern is empty", "c": 400}
*/
package server

// Request is the single request shape for every action.
type Request struct {
	ID      string `msgpack:"id"`
	Action  string `msgpack:"action,omitempty"` // "", "match", "contains", "similar", "info", "reload"
	Pattern string `msgpack:"p,omitempty"`
	Limit   int    `msgpack:"n,omitempty"`
}

// MatchSuggestion is one matched string with its position (1 = best).
type MatchSuggestion struct {
	Word string `msgpack:"w"`
	Rank uint16 `msgpack:"r"`
}

// MatchResponse answers a match request. TimeTaken is in microseconds.
type MatchResponse struct {
	ID        string            `msgpack:"id"`
	Matches   []MatchSuggestion `msgpack:"m"`
	Count     int               `msgpack:"c"`
	TimeTaken int64             `msgpack:"t"`
}

// ContainsResponse answers an exact lookup.
type ContainsResponse struct {
	ID    string `msgpack:"id"`
	Found bool   `msgpack:"found"`
}

// SimilarResponse lists indexed strings under a prefix.
type SimilarResponse struct {
	ID    string   `msgpack:"id"`
	Words []string `msgpack:"words"`
	Count int      `msgpack:"c"`
}

// InfoResponse describes the loaded index.
type InfoResponse struct {
	ID         string `msgpack:"id"`
	Status     string `msgpack:"status"`
	Keys       int    `msgpack:"keys"`
	MaxKeys    int    `msgpack:"max_keys"`
	MaxMatches int    `msgpack:"max_matches"`
	Requests   int    `msgpack:"requests"`
}

// ReloadResponse reports the outcome of a rebuild.
type ReloadResponse struct {
	ID      string `msgpack:"id"`
	Status  string `msgpack:"status"`
	Keys    int    `msgpack:"keys"`
	Skipped int    `msgpack:"skipped,omitempty"`
	Error   string `msgpack:"error,omitempty"`
}

// ErrorResponse holds basic error information for failed requests
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
