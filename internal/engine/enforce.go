package engine

import (
	"strconv"
)

// Enforcement wrapper for TokenSource to apply duplicate key handling,
// max depth checks, and max bytes truncation in a streaming fashion.

// DuplicateStrictness controls duplicate key handling.
type DuplicateStrictness int

const (
	DupIgnore DuplicateStrictness = iota
	DupWarn
	DupError
)

// Issue codes reported by the enforcement wrapper.
const (
	CodeDuplicateKey = "duplicate_key"
	CodeMaxDepth     = "max_depth"
	CodeTruncated    = "truncated"
)

// EnforceOptions controls runtime enforcement behavior.
type EnforceOptions struct {
	OnDuplicate DuplicateStrictness
	MaxDepth    int
	MaxBytes    int64
	// IssueSink receives every issue, fatal or not. With DupWarn it is the
	// only place duplicate keys are reported.
	IssueSink func(Issue)
}

// Issue describes an enforcement violation. Path is a dot-path into the
// current value, array elements being addressed as name[i].
type Issue struct {
	Code    string
	Path    string
	Message string
}

// IssueError is the error returned for a fatal Issue.
type IssueError struct{ Issue }

func (e IssueError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind         containerKind
	keys         map[string]struct{}
	expectingKey bool
	path         string
	nextIndex    int
	pendingKey   string
}

// WrapWithEnforcement returns a TokenSource that enforces duplicate key policy,
// maximum nesting depth, and maximum consumed bytes. The depth counter and
// paths restart at every top-level value.
func WrapWithEnforcement(inner TokenSource, opt EnforceOptions) TokenSource {
	return &enforcingTokenSource{inner: inner, opt: opt}
}

type enforcingTokenSource struct {
	inner TokenSource
	opt   EnforceOptions
	stack []frame
}

func (e *enforcingTokenSource) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return Token{}, err
	}

	path := e.pathForToken(tok)

	switch tok.Kind {
	case KindBeginObject, KindBeginArray:
		f := frame{kind: kindArray, path: path}
		if tok.Kind == KindBeginObject {
			f = frame{kind: kindObject, keys: map[string]struct{}{}, expectingKey: true, path: path}
		}
		e.stack = append(e.stack, f)
		if e.opt.MaxDepth > 0 && len(e.stack) > e.opt.MaxDepth {
			return Token{}, e.fail(Issue{Code: CodeMaxDepth, Path: path, Message: "max depth exceeded"})
		}
	case KindEndObject, KindEndArray:
		if n := len(e.stack); n > 0 {
			e.stack = e.stack[:n-1]
		}
		e.valueDone()
	case KindKey:
		if n := len(e.stack); n > 0 {
			top := &e.stack[n-1]
			if top.kind == kindObject && top.expectingKey {
				if _, dup := top.keys[tok.String]; dup && e.opt.OnDuplicate != DupIgnore {
					issue := Issue{Code: CodeDuplicateKey, Path: path, Message: "key '" + tok.String + "' duplicated"}
					if e.opt.OnDuplicate == DupError {
						return Token{}, e.fail(issue)
					}
					e.report(issue)
				}
				top.keys[tok.String] = struct{}{}
				top.expectingKey = false
			}
		}
	case KindString, KindNumber, KindBool, KindNull:
		e.valueDone()
	}

	if e.opt.MaxBytes > 0 {
		if off := e.Location(); off > e.opt.MaxBytes {
			return Token{}, e.fail(Issue{Code: CodeTruncated, Path: path, Message: "max bytes exceeded"})
		}
	}

	return tok, nil
}

// valueDone marks the pending member of the enclosing object as consumed.
func (e *enforcingTokenSource) valueDone() {
	if n := len(e.stack); n > 0 {
		top := &e.stack[n-1]
		if top.kind == kindObject && !top.expectingKey {
			top.expectingKey = true
			top.pendingKey = ""
		}
	}
}

func (e *enforcingTokenSource) report(issue Issue) {
	if e.opt.IssueSink != nil {
		e.opt.IssueSink(issue)
	}
}

func (e *enforcingTokenSource) fail(issue Issue) error {
	e.report(issue)
	return IssueError{issue}
}

func (e *enforcingTokenSource) pathForToken(tok Token) string {
	if len(e.stack) == 0 {
		return ""
	}
	top := &e.stack[len(e.stack)-1]
	switch tok.Kind {
	case KindKey:
		top.pendingKey = tok.String
		return joinPath(top.path, tok.String)
	case KindBeginObject, KindBeginArray, KindString, KindNumber, KindBool, KindNull:
		if top.kind == kindArray {
			p := top.path + "[" + strconv.Itoa(top.nextIndex) + "]"
			top.nextIndex++
			return p
		}
		if !top.expectingKey {
			return joinPath(top.path, top.pendingKey)
		}
	}
	return top.path
}

func joinPath(base, name string) string {
	if base == "" {
		return name
	}
	return base + "." + name
}

func (e *enforcingTokenSource) Location() int64 { return e.inner.Location() }
