package idea

import (
	"encoding/binary"
	"math"
	"strconv"
	"time"

	"github.com/kailas-cloud/ideaboard/internal/domain"
	domidea "github.com/kailas-cloud/ideaboard/internal/domain/idea"
)

// Hash field names. The FT index reads category, votes and __vector.
const (
	fieldAuthorID  = "author_id"
	fieldTitle     = "title"
	fieldProblem   = "problem"
	fieldSolution  = "solution"
	fieldCategory  = "category"
	fieldVotes     = "votes"
	fieldCreatedAt = "created_at"
	fieldUpdatedAt = "updated_at"
	fieldVector    = "__vector"
)

// KeyPrefix is the hash prefix covered by the idea index.
const KeyPrefix = domain.KeyPrefix + "idea:"

// IndexName is the FT index over idea hashes.
const IndexName = KeyPrefix + "idx"

func ideaKey(id string) string { return KeyPrefix + id }

// buildHashFields converts a domain Idea into a flat map for HSET. Votes are owned by
// HINCRBY and only written on create.
func buildHashFields(i *domidea.Idea, withVotes bool) map[string]string {
	m := map[string]string{
		fieldAuthorID:  i.AuthorID(),
		fieldTitle:     i.Title(),
		fieldProblem:   i.Problem(),
		fieldSolution:  i.Solution(),
		fieldCategory:  i.Category(),
		fieldCreatedAt: strconv.FormatInt(i.CreatedAt().UnixMilli(), 10),
		fieldUpdatedAt: strconv.FormatInt(i.UpdatedAt().UnixMilli(), 10),
	}
	if withVotes {
		m[fieldVotes] = strconv.FormatInt(i.Votes(), 10)
	}
	if i.HasEmbedding() {
		m[fieldVector] = vectorToBytes(i.Embedding())
	}
	return m
}

// parseHashFields converts a flat hash map back into a domain Idea.
func parseHashFields(id string, m map[string]string) domidea.Idea {
	votes, _ := strconv.ParseInt(m[fieldVotes], 10, 64)
	return domidea.Reconstruct(
		id,
		m[fieldAuthorID],
		domidea.Content{
			Title:    m[fieldTitle],
			Problem:  m[fieldProblem],
			Solution: m[fieldSolution],
			Category: m[fieldCategory],
		},
		votes,
		bytesToVector(m[fieldVector]),
		parseMillis(m[fieldCreatedAt]),
		parseMillis(m[fieldUpdatedAt]),
	)
}

func parseMillis(s string) time.Time {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil || ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// bytesToVector deserializes a binary string back to []float32.
func bytesToVector(s string) []float32 {
	if s == "" || len(s)%4 != 0 {
		return nil
	}
	b := []byte(s)
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
