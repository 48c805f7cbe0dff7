package masker

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// BlacklistEntry is one masked value and how often it was masked.
type BlacklistEntry struct {
	Word  string `json:"word"`
	Count int64  `json:"count"`
}

// Blacklist counts masked values so reviewers can find words that belong on
// the whitelist. It is safe for concurrent use.
type Blacklist struct {
	mu     sync.Mutex
	counts map[string]int64
}

// NewBlacklist returns an empty Blacklist.
func NewBlacklist() *Blacklist {
	return &Blacklist{counts: make(map[string]int64)}
}

// Record counts the first space-delimited token of value, lower-cased.
// Blank values are ignored, as are all-digit values when numbers are not
// being masked.
func (b *Blacklist) Record(value string, maskNumbers bool) {
	if b == nil {
		return
	}
	if !maskNumbers && IsNumeric(value) {
		return
	}
	if strings.TrimSpace(value) == "" {
		return
	}
	key := strings.ToLower(value)
	if i := strings.IndexByte(key, ' '); i >= 0 {
		key = key[:i]
	}
	b.mu.Lock()
	b.counts[key]++
	b.mu.Unlock()
}

// Count returns how often word was recorded.
func (b *Blacklist) Count(word string) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts[word]
}

// Len returns the number of distinct recorded words.
func (b *Blacklist) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.counts)
}

// Entries returns a snapshot sorted by descending count, ties by word.
func (b *Blacklist) Entries() []BlacklistEntry {
	b.mu.Lock()
	entries := make([]BlacklistEntry, 0, len(b.counts))
	for w, c := range b.counts {
		entries = append(entries, BlacklistEntry{Word: w, Count: c})
	}
	b.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Word < entries[j].Word
	})
	return entries
}

// Reset forgets all recorded words.
func (b *Blacklist) Reset() {
	b.mu.Lock()
	b.counts = make(map[string]int64)
	b.mu.Unlock()
}

// WriteReport writes one `"word", count` line per entry, most frequent first.
func (b *Blacklist) WriteReport(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, e := range b.Entries() {
		if _, err := fmt.Fprintf(bw, "%q, %d\n", e.Word, e.Count); err != nil {
			return err
		}
	}
	return bw.Flush()
}
