// Package hrmsapitest provides an in-memory hrmsapi.API for handler and
// service tests.
package hrmsapitest

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"
)

type Call struct {
	Method string
	Path   string
	Token  string
	Query  url.Values
	Body   interface{}
}

// Fake answers calls from canned responses keyed by "METHOD path". A string
// response is taken as raw JSON; anything else is marshalled first.
type Fake struct {
	mu        sync.Mutex
	responses map[string]interface{}
	errors    map[string]error
	calls     []Call
}

func New() *Fake {
	return &Fake{
		responses: make(map[string]interface{}),
		errors:    make(map[string]error),
	}
}

func (f *Fake) On(method, path string, response interface{}) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[method+" "+path] = response
	delete(f.errors, method+" "+path)
	return f
}

func (f *Fake) Fail(method, path string, err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors[method+" "+path] = err
	return f
}

func (f *Fake) Get(_ context.Context, token, path string, query url.Values, out interface{}) error {
	return f.handle(Call{Method: "GET", Path: path, Token: token, Query: query}, out)
}

func (f *Fake) Post(_ context.Context, token, path string, body, out interface{}) error {
	return f.handle(Call{Method: "POST", Path: path, Token: token, Body: body}, out)
}

func (f *Fake) Put(_ context.Context, token, path string, body, out interface{}) error {
	return f.handle(Call{Method: "PUT", Path: path, Token: token, Body: body}, out)
}

func (f *Fake) handle(call Call, out interface{}) error {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	key := call.Method + " " + call.Path
	err := f.errors[key]
	resp, ok := f.responses[key]
	f.mu.Unlock()

	if err != nil {
		return err
	}
	if !ok || out == nil {
		return nil
	}

	var raw []byte
	if s, isString := resp.(string); isString {
		raw = []byte(s)
	} else {
		var mErr error
		if raw, mErr = json.Marshal(resp); mErr != nil {
			return mErr
		}
	}
	return json.Unmarshal(raw, out)
}

func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

func (f *Fake) CallsTo(method, path string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

// Mutations returns every non-GET call.
func (f *Fake) Mutations() []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Method != "GET" {
			out = append(out, c)
		}
	}
	return out
}

// BodyJSON re-encodes a recorded body into a generic map.
func BodyJSON(c Call) map[string]interface{} {
	raw, _ := json.Marshal(c.Body)
	var m map[string]interface{}
	_ = json.Unmarshal(raw, &m)
	return m
}
