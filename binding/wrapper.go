// Package main is the cgo ABI surface of §6: a C-callable shim over the pure
// Go core. Unlike the teacher's single global *MorphAnalyzer, parattice
// callers can hold several lattices, dictionaries and matchers live at once,
// so state lives in a handle table (a map guarded by a mutex) and every
// exported function takes or returns an opaque uint64 handle instead of
// assuming one global instance.
package main

// #include <stdlib.h>
import "C"

import (
	"encoding/json"
	"sync"
	"unsafe"

	"github.com/parattice/parattice-go/builder"
	"github.com/parattice/parattice-go/codec"
	"github.com/parattice/parattice-go/dict"
	"github.com/parattice/parattice-go/dot"
	"github.com/parattice/parattice-go/kmp"
	"github.com/parattice/parattice-go/lattice"
	"github.com/parattice/parattice-go/searchindex"
)

var (
	mu         sync.Mutex
	nextHandle uint64
	lattices   = make(map[uint64]*lattice.Lattice)
	dicts      = make(map[uint64]*dict.Dict)
	matchers   = make(map[uint64]*kmp.Matcher)
)

func allocHandle() uint64 {
	nextHandle++
	return nextHandle
}

// LoadLattice decodes a serialized lattice (per codec.Decode) and returns a
// handle, or 0 on failure.
//
//export LoadLattice
func LoadLattice(data *C.char, length C.int) C.ulonglong {
	buf := C.GoBytes(unsafe.Pointer(data), length)
	l, err := codec.Decode(buf)
	if err != nil {
		return 0
	}
	mu.Lock()
	defer mu.Unlock()
	h := allocHandle()
	lattices[h] = l
	return C.ulonglong(h)
}

// ReleaseLattice drops a lattice handle.
//
//export ReleaseLattice
func ReleaseLattice(handle C.ulonglong) {
	mu.Lock()
	defer mu.Unlock()
	delete(lattices, uint64(handle))
}

// LatticeSize returns a lattice's node count, or -1 for an unknown handle.
//
//export LatticeSize
func LatticeSize(handle C.ulonglong) C.longlong {
	mu.Lock()
	l, ok := lattices[uint64(handle)]
	mu.Unlock()
	if !ok {
		return -1
	}
	return C.longlong(l.Size())
}

// LatticeTrunkWordsJSON returns the trunk words as a JSON array of base64
// strings (Go's json package base64-encodes []byte fields by default),
// matching the teacher's own json.Marshal-then-CString idiom. Returns nil on
// an unknown handle; the caller must free the result with FreeString.
//
//export LatticeTrunkWordsJSON
func LatticeTrunkWordsJSON(handle C.ulonglong) *C.char {
	mu.Lock()
	l, ok := lattices[uint64(handle)]
	mu.Unlock()
	if !ok {
		return nil
	}
	out, err := json.Marshal(l.TrunkWords())
	if err != nil {
		return nil
	}
	return C.CString(string(out))
}

// CreateDict builds a dictionary from a JSON-encoded [][][]string payload
// (groups of phrases of tokens) and returns a handle, or 0 on failure.
//
//export CreateDict
func CreateDict(jsonGroups *C.char) C.ulonglong {
	var raw [][]([]string)
	if err := json.Unmarshal([]byte(C.GoString(jsonGroups)), &raw); err != nil {
		return 0
	}
	groups := make([]([]dict.Phrase), len(raw))
	for i, g := range raw {
		phrases := make([]dict.Phrase, len(g))
		for j, p := range g {
			phrases[j] = make(dict.Phrase, len(p))
			for k, tok := range p {
				phrases[j][k] = []byte(tok)
			}
		}
		groups[i] = phrases
	}
	d, err := dict.New(groups)
	if err != nil {
		return 0
	}
	mu.Lock()
	defer mu.Unlock()
	h := allocHandle()
	dicts[h] = d
	return C.ulonglong(h)
}

// ReleaseDict drops a dictionary handle.
//
//export ReleaseDict
func ReleaseDict(handle C.ulonglong) {
	mu.Lock()
	defer mu.Unlock()
	delete(dicts, uint64(handle))
}

// CreateMatcher compiles a KMP matcher for a JSON-encoded []string pattern
// and returns a handle, or 0 on failure.
//
//export CreateMatcher
func CreateMatcher(jsonPattern *C.char) C.ulonglong {
	var tokens []string
	if err := json.Unmarshal([]byte(C.GoString(jsonPattern)), &tokens); err != nil {
		return 0
	}
	pattern := make([][]byte, len(tokens))
	for i, tok := range tokens {
		pattern[i] = []byte(tok)
	}
	mu.Lock()
	defer mu.Unlock()
	h := allocHandle()
	matchers[h] = kmp.New(pattern)
	return C.ulonglong(h)
}

// ReleaseMatcher drops a matcher handle.
//
//export ReleaseMatcher
func ReleaseMatcher(handle C.ulonglong) {
	mu.Lock()
	defer mu.Unlock()
	delete(matchers, uint64(handle))
}

// MatchJSON runs matcherHandle against latticeHandle and returns the
// occurrences as a JSON array of kmp.Match, or nil if either handle is
// unknown.
//
//export MatchJSON
func MatchJSON(matcherHandle, latticeHandle C.ulonglong) *C.char {
	mu.Lock()
	m, mok := matchers[uint64(matcherHandle)]
	l, lok := lattices[uint64(latticeHandle)]
	mu.Unlock()
	if !mok || !lok {
		return nil
	}
	out, err := json.Marshal(m.FindAll(l))
	if err != nil {
		return nil
	}
	return C.CString(string(out))
}

// BuildLattice runs the builder against dictHandle for a JSON-encoded
// []string phrase, with shrink/maxDepth per §5, and returns a lattice
// handle, or 0 on failure. This is the binding's only path to the builder;
// every other lattice-handle export assumes LoadLattice or BuildLattice
// produced its handle.
//
//export BuildLattice
func BuildLattice(dictHandle C.ulonglong, jsonWords *C.char, shrink C.int, maxDepth C.int) C.ulonglong {
	mu.Lock()
	d, ok := dicts[uint64(dictHandle)]
	mu.Unlock()
	if !ok {
		return 0
	}
	var tokens []string
	if err := json.Unmarshal([]byte(C.GoString(jsonWords)), &tokens); err != nil {
		return 0
	}
	words := make(dict.Phrase, len(tokens))
	for i, tok := range tokens {
		words[i] = []byte(tok)
	}
	l, err := builder.Build(d, words, builder.Options{Shrink: shrink != 0, MaxDepth: int(maxDepth)})
	if err != nil {
		return 0
	}
	mu.Lock()
	defer mu.Unlock()
	h := allocHandle()
	lattices[h] = l
	return C.ulonglong(h)
}

// LatticeToBytesJSON returns codec.Encode(l) as a JSON-encoded (hence
// base64) byte string, or nil on an unknown handle or encode failure. The
// caller must free the result with FreeString.
//
//export LatticeToBytesJSON
func LatticeToBytesJSON(handle C.ulonglong) *C.char {
	mu.Lock()
	l, ok := lattices[uint64(handle)]
	mu.Unlock()
	if !ok {
		return nil
	}
	buf, err := codec.Encode(l)
	if err != nil {
		return nil
	}
	out, err := json.Marshal(buf)
	if err != nil {
		return nil
	}
	return C.CString(string(out))
}

// LatticeDumpDot returns the lattice's Graphviz DOT rendering (dot.Write) as
// a plain C string, or nil on an unknown handle. The caller must free the
// result with FreeString.
//
//export LatticeDumpDot
func LatticeDumpDot(handle C.ulonglong) *C.char {
	mu.Lock()
	l, ok := lattices[uint64(handle)]
	mu.Unlock()
	if !ok {
		return nil
	}
	return C.CString(dot.Write(l))
}

// LatticeGetTrunkSpanJSON projects a JSON-encoded []lattice.Step path
// (typically a kmp.Match's Path) onto the trunk and returns the resulting
// []lattice.Step as JSON, or nil on an unknown handle or malformed input.
//
//export LatticeGetTrunkSpanJSON
func LatticeGetTrunkSpanJSON(handle C.ulonglong, jsonPath *C.char) *C.char {
	mu.Lock()
	l, ok := lattices[uint64(handle)]
	mu.Unlock()
	if !ok {
		return nil
	}
	var path []lattice.Step
	if err := json.Unmarshal([]byte(C.GoString(jsonPath)), &path); err != nil {
		return nil
	}
	out, err := json.Marshal(l.GetTrunkSpan(path))
	if err != nil {
		return nil
	}
	return C.CString(string(out))
}

// LatticeDumpForSearchIndexJSON runs searchindex.Project over the lattice
// and returns its records and label pool as a single JSON object, or nil on
// an unknown handle.
//
//export LatticeDumpForSearchIndexJSON
func LatticeDumpForSearchIndexJSON(handle C.ulonglong) *C.char {
	mu.Lock()
	l, ok := lattices[uint64(handle)]
	mu.Unlock()
	if !ok {
		return nil
	}
	records, pool := searchindex.Project(l)
	out, err := json.Marshal(struct {
		Records []searchindex.Record `json:"records"`
		Pool    []byte               `json:"pool"`
	}{records, pool})
	if err != nil {
		return nil
	}
	return C.CString(string(out))
}

// FreeString releases a *C.char returned by any of the JSON-returning
// exports above.
//
//export FreeString
func FreeString(str *C.char) {
	if str != nil {
		C.free(unsafe.Pointer(str))
	}
}

func main() {}
