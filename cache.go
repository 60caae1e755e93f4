package frag

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
)

// rawCacheSize bounds the Raw-node intern cache. Sized for memory
// stability under heavy allocation pressure: enough headroom for a large,
// varied set of distinct dynamically-built SQL texts without letting the
// cache grow unbounded.
const rawCacheSize = 10_000

// rawCache interns Raw nodes by text. It is keyed by the xxhash of the
// text rather than the text itself: golang-lru's generic Cache hashes
// whatever comparable key it is given, and a pre-computed 64-bit digest is
// cheaper to compare and to carry than repeatedly re-hashing a long SQL
// fragment on every lookup. A 64-bit digest space makes an accidental
// collision between two distinct fragments astronomically unlikely for
// any realistic number of distinct Raw texts a single process will ever
// intern; the same tradeoff is made by go-sqlt's expression cache.
var rawCache = mustNewLRU[uint64, *rawNode](rawCacheSize)

func mustNewLRU[K comparable, V any](size int) *lru.Cache[K, V] {
	c, err := lru.New[K, V](size)
	if err != nil {
		// Only returns an error for a non-positive size, which is a
		// programmer error in this package, not a caller-reachable one.
		panic(err)
	}
	return c
}

// internRaw returns the interned *rawNode for text, constructing and
// inserting one if absent. golang-lru's Cache guards its own state with a
// lock, so concurrent construction is safe without an external mutex;
// entries are value-equal by key, so a lost race on insert is harmless.
func internRaw(text string) *rawNode {
	key := xxhash.Sum64String(text)
	if n, ok := rawCache.Get(key); ok && n.text == text {
		return n
	}
	n := &rawNode{mark: newTrustMark(), text: text}
	rawCache.Add(key, n)
	return n
}

// templateCache is the unbounded cache of single-piece template-literal
// source strings to their Raw node, keyed directly by the source string.
// It is unbounded because, per the fragment algebra's design, inputs here
// are typically a small fixed set of literal strings baked into call
// sites, not arbitrary runtime text — unlike the Raw cache, which also
// intern()s arbitrary dynamically-built text and therefore needs an
// eviction policy. A plain map guarded by an RWMutex is enough: lookups
// dominate once the small, fixed set of call-site literals has warmed up.
type templateCache struct {
	mu sync.RWMutex
	m  map[string]*rawNode
}

func newTemplateCache() *templateCache {
	return &templateCache{m: make(map[string]*rawNode, 64)}
}

func (c *templateCache) get(src string) (*rawNode, bool) {
	c.mu.RLock()
	n, ok := c.m[src]
	c.mu.RUnlock()
	return n, ok
}

func (c *templateCache) put(src string, n *rawNode) {
	c.mu.Lock()
	c.m[src] = n
	c.mu.Unlock()
}

var simpleTemplateCache = newTemplateCache()

// Singleton fragments, reused everywhere Literal() and Join() would
// otherwise allocate.
var (
	// TRUE is the interned fragment rendering the SQL boolean literal TRUE.
	TRUE Fragment = &rawNode{mark: newTrustMark(), text: "TRUE"}
	// FALSE is the interned fragment rendering the SQL boolean literal FALSE.
	FALSE Fragment = &rawNode{mark: newTrustMark(), text: "FALSE"}
	// NULL is the interned fragment rendering the SQL literal NULL.
	NULL Fragment = &rawNode{mark: newTrustMark(), text: "NULL"}
	// BLANK is the interned empty fragment: an empty Query, which renders
	// to nothing and contributes no values.
	BLANK Fragment = &queryNode{mark: newTrustMark(), nodes: nil}
)
