// Package action implements the compile step from spec.md §4.4: turning an
// evaluator trigger into one of three concrete occurrences (HTTP request,
// file bytes, or in-process data), ready for an external sink to dispatch.
package action

import (
	"bytes"
	"encoding/json"

	"github.com/stacks-network/chainhook-engine/pkg/chainhook"
)

// OccurrenceKind tags which variant of Occurrence is populated.
type OccurrenceKind string

const (
	OccurrenceHttp OccurrenceKind = "http"
	OccurrenceFile OccurrenceKind = "file"
	OccurrenceData OccurrenceKind = "data"
)

// HttpOccurrence is a fully-formed POST request body and headers, ready for
// a sink to issue. Issuing the request is the sink's responsibility.
type HttpOccurrence struct {
	URL                 string
	AuthorizationHeader string
	ContentType         string
	Body                []byte
}

// FileOccurrence is the UTF-8 JSON bytes to append to Path. Appending is the
// sink's responsibility.
type FileOccurrence struct {
	Path  string
	Bytes []byte
}

// DataOccurrence carries the payload for an in-process consumer (the Noop
// action); Payload is already-serialised JSON so every occurrence kind
// shares one encoding path.
type DataOccurrence struct {
	Payload []byte
}

// Occurrence is the tagged sum of the three dispatch targets a Chainhook
// Action compiles to.
type Occurrence struct {
	Kind OccurrenceKind
	Http *HttpOccurrence
	File *FileOccurrence
	Data *DataOccurrence
}

// ChainhookPayload names the hook that produced an occurrence, embedded
// alongside the matched blocks per spec.md §6.
type ChainhookPayload struct {
	UUID      string               `json:"uuid"`
	Predicate interface{}          `json:"predicate"`
	Action    chainhook.ActionKind `json:"action"`
}

// Payload is the JSON body shared by every occurrence kind: the matched
// blocks on the apply and rollback sides (mirroring the trigger shape) and
// the originating chainhook's identity.
type Payload struct {
	Apply     []BlockPayload   `json:"apply"`
	Rollback  []BlockPayload   `json:"rollback"`
	Chainhook ChainhookPayload `json:"chainhook"`
}

// BlockPayload is one matched block's serialised form: identity and its
// matched transactions. Transactions is deliberately typed as
// json.RawMessage-compatible interface{} here because Bitcoin and Stacks
// transactions serialise to different shapes; pkg/action/bitcoin.go and
// pkg/action/stacks.go build the concrete per-transaction payloads.
type BlockPayload struct {
	BlockIdentifier       BlockIdentifierPayload `json:"block_identifier"`
	ParentBlockIdentifier BlockIdentifierPayload `json:"parent_block_identifier"`
	Timestamp             int64                  `json:"timestamp"`
	Transactions          []interface{}          `json:"transactions"`
}

// BlockIdentifierPayload is the 0x-hex hash/height pair every block and
// parent reference uses.
type BlockIdentifierPayload struct {
	Index uint64 `json:"index"`
	Hash  string `json:"hash"`
}

// compileDataOccurrence is the Noop compile target shared by both chains:
// a Data occurrence carrying the same serialised payload every other
// action kind would send.
func compileDataOccurrence(payload Payload) (Occurrence, error) {
	body, err := marshalPayload(payload)
	if err != nil {
		return Occurrence{}, err
	}
	return Occurrence{Kind: OccurrenceData, Data: &DataOccurrence{Payload: body}}, nil
}

// compileFileOccurrence is the FileAppend compile target shared by both
// chains.
func compileFileOccurrence(path string, payload Payload) (Occurrence, error) {
	body, err := marshalPayload(payload)
	if err != nil {
		return Occurrence{}, err
	}
	return Occurrence{Kind: OccurrenceFile, File: &FileOccurrence{Path: path, Bytes: body}}, nil
}

// compileHttpOccurrence is the HttpPost compile target shared by both
// chains.
func compileHttpOccurrence(url, authHeader string, payload Payload) (Occurrence, error) {
	body, err := marshalPayload(payload)
	if err != nil {
		return Occurrence{}, err
	}
	return Occurrence{
		Kind: OccurrenceHttp,
		Http: &HttpOccurrence{
			URL:                 url,
			AuthorizationHeader: authHeader,
			ContentType:         "application/json",
			Body:                body,
		},
	}, nil
}

func marshalPayload(payload Payload) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// compileByActionKind dispatches to the three compile targets per Action's
// Kind tag; it is the tail shared by CompileBitcoin and CompileStacks once
// they've built the chain-specific Payload.
func compileByActionKind(a chainhook.Action, payload Payload) (Occurrence, error) {
	switch a.Kind {
	case chainhook.ActionNoop:
		return compileDataOccurrence(payload)
	case chainhook.ActionFileAppend:
		return compileFileOccurrence(a.FileAppend.Path, payload)
	case chainhook.ActionHttpPost:
		return compileHttpOccurrence(a.HttpPost.URL, a.HttpPost.AuthorizationHeader, payload)
	default:
		return Occurrence{}, chainhook.ErrActionKindMismatch
	}
}
