package core

// generator.go synthesizes values for a schema.
//
// Each table is split into fixed-size chunks. Every chunk owns a private
// random stream derived from a per-table key and the chunk index. A seeded
// generator uses its seed as that key, so it produces the same table
// whatever the worker count; an unseeded one draws a fresh key for every
// table. Above the parallel threshold the chunks are spread across
// goroutines.

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/JonMunkholm/DataForge/internal/dataset"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// GenerateChunkSize is the number of rows produced from one random stream.
const GenerateChunkSize = 1000

// DefaultParallelThreshold is the row count at which generation fans out.
const DefaultParallelThreshold = 5000

// DefaultGenerateWorkers is the default number of generation goroutines.
const DefaultGenerateWorkers = 4

// PreviewRowLimit caps the number of rows returned by Preview.
const PreviewRowLimit = 10

// Generator produces synthetic values. It is safe for concurrent use.
type Generator struct {
	dataset atomic.Pointer[dataset.Dataset]

	now               func() time.Time
	workers           int
	parallelThreshold int
	maxRows           int

	seeded bool
	seed   uint64

	// single-value stream used by GenerateValue
	mu     sync.Mutex
	stream *stream
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithSeed makes every generated value reproducible.
func WithSeed(seed uint64) GeneratorOption {
	return func(g *Generator) {
		g.seeded = true
		g.seed = seed
	}
}

// WithWorkers sets the number of goroutines used for large tables.
func WithWorkers(n int) GeneratorOption {
	return func(g *Generator) {
		if n > 0 {
			g.workers = n
		}
	}
}

// WithParallelThreshold sets the row count at which generation fans out.
func WithParallelThreshold(n int) GeneratorOption {
	return func(g *Generator) {
		if n > 0 {
			g.parallelThreshold = n
		}
	}
}

// WithMaxRows lowers the maximum table size below MaxRowCount.
func WithMaxRows(n int) GeneratorOption {
	return func(g *Generator) {
		g.maxRows = n
	}
}

// WithClock replaces time.Now for date generation.
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) {
		g.now = now
	}
}

// WithDataset sets the initial word lists.
func WithDataset(ds *dataset.Dataset) GeneratorOption {
	return func(g *Generator) {
		if ds != nil {
			g.dataset.Store(ds)
		}
	}
}

// NewGenerator creates a generator using the built-in word lists unless
// WithDataset is given.
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{
		now:               time.Now,
		workers:           DefaultGenerateWorkers,
		parallelThreshold: DefaultParallelThreshold,
		maxRows:           MaxRowCount,
	}
	g.dataset.Store(dataset.Default())
	for _, opt := range opts {
		opt(g)
	}
	if !g.seeded {
		g.seed = rand.Uint64()
	}
	g.stream = newStream(g.seed, g.salt(), ^uint64(0), g.seeded)
	return g
}

// SetDataset swaps the word lists used by subsequent calls. In-flight
// tables finish with the lists they started with.
func (g *Generator) SetDataset(ds *dataset.Dataset) {
	if ds != nil {
		g.dataset.Store(ds)
	}
}

// Dataset returns the word lists currently in use.
func (g *Generator) Dataset() *dataset.Dataset {
	return g.dataset.Load()
}

// MaxRows returns the largest table the generator accepts.
func (g *Generator) MaxRows() int {
	if g.maxRows <= 0 || g.maxRows > MaxRowCount {
		return MaxRowCount
	}
	return g.maxRows
}

// ParallelThreshold returns the row count at which generation fans out.
func (g *Generator) ParallelThreshold() int {
	return g.parallelThreshold
}

// GenerateValue returns one synthetic value for the field. The result is a
// string, int or bool depending on the field type.
func (g *Generator) GenerateValue(f Field) any {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stream.value(g.dataset.Load(), g.now(), f)
}

// GenerateTable validates the fields and produces rowCount rows, one value
// per field in each row. Fields are returned sorted by order.
func (g *Generator) GenerateTable(ctx context.Context, fields []Field, rowCount int) (*Table, error) {
	if err := ValidateFields(fields); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, newRequestError("fields", "no fields provided")
	}
	if err := ValidateRowCount(rowCount, g.MaxRows()); err != nil {
		return nil, err
	}

	sorted := SortedFields(fields)
	rows := make([]Row, rowCount)
	salt := g.salt()
	ds := g.dataset.Load()
	now := g.now()

	workers := 1
	if rowCount >= g.parallelThreshold {
		workers = g.workers
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for start := 0; start < rowCount; start += GenerateChunkSize {
		if err := egCtx.Err(); err != nil {
			break
		}
		end := min(start+GenerateChunkSize, rowCount)
		chunk := uint64(start / GenerateChunkSize)

		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			s := newStream(g.seed, salt, chunk, g.seeded)
			for i := start; i < end; i++ {
				row := make(Row, len(sorted))
				for _, f := range sorted {
					row[f.Name] = s.value(ds, now, f)
				}
				rows[i] = row
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("generate table: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("generate table: %w", err)
	}

	return &Table{Fields: sorted, Rows: rows}, nil
}

// salt is mixed into every stream key. It is zero for seeded generators and
// random otherwise, so unseeded tables never repeat.
func (g *Generator) salt() uint64 {
	if g.seeded {
		return 0
	}
	return rand.Uint64()
}

// Preview generates at most PreviewRowLimit rows.
func (g *Generator) Preview(ctx context.Context, fields []Field, rowCount int) (*Table, error) {
	if rowCount > PreviewRowLimit {
		rowCount = PreviewRowLimit
	}
	return g.GenerateTable(ctx, fields, rowCount)
}

// stream is a random source keyed by (seed, salt, index). When seeded,
// ChaCha8 also serves as the byte reader for uuid values; otherwise uuids
// come from crypto/rand through uuid.NewString.
type stream struct {
	src    *rand.ChaCha8
	rnd    *rand.Rand
	seeded bool
}

func newStream(seed, salt, index uint64, seeded bool) *stream {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[0:8], seed)
	binary.LittleEndian.PutUint64(key[8:16], index)
	binary.LittleEndian.PutUint64(key[16:24], salt)
	src := rand.NewChaCha8(key)
	return &stream{src: src, rnd: rand.New(src), seeded: seeded}
}

func (s *stream) pick(list []string) string {
	if len(list) == 0 {
		return ""
	}
	return list[s.rnd.IntN(len(list))]
}

func (s *stream) value(ds *dataset.Dataset, now time.Time, f Field) any {
	r := s.rnd

	switch f.Type {
	case TypeString:
		return s.text(ds, f.Name)

	case TypeNumber:
		return r.IntN(1000)

	case TypeDate:
		year := now.Year() - r.IntN(5)
		month := r.IntN(12) + 1
		day := r.IntN(28) + 1
		return fmt.Sprintf("%04d-%02d-%02d", year, month, day)

	case TypeBoolean:
		return r.IntN(2) == 1

	case TypeEmail:
		local := strings.ToLower(s.pick(ds.FirstNames) + s.pick(ds.LastNames))
		local = strings.ReplaceAll(local, " ", "")
		return local + "@" + s.pick(ds.EmailDomains)

	case TypePhone:
		return "+1" + strconv.FormatInt(1000000000+r.Int64N(9000000000), 10)

	case TypeAddress:
		return fmt.Sprintf("%d %s, %s, CA %d",
			r.IntN(9999)+1, s.pick(ds.Streets), s.pick(ds.AddressCities), 10000+r.IntN(90000))

	case TypeURL:
		return "https://example.com/" + s.pick(ds.URLPaths)

	case TypeUUID:
		if !s.seeded {
			return uuid.NewString()
		}
		id, err := uuid.NewRandomFromReader(s.src)
		if err != nil {
			return uuid.NewString()
		}
		return id.String()

	case TypeCurrency:
		cents := r.IntN(1000000)
		return fmt.Sprintf("$%d.%02d", cents/100, cents%100)

	default:
		slog.Warn("unknown data type, generating string", "field", f.Name, "type", string(f.Type))
		return s.text(ds, f.Name)
	}
}

// text picks a string based on hints in the field name.
func (s *stream) text(ds *dataset.Dataset, fieldName string) string {
	name := strings.ToLower(fieldName)

	switch {
	case containsAny(name, "name", "first", "last"):
		switch {
		case strings.Contains(name, "first"):
			return s.pick(ds.FirstNames)
		case strings.Contains(name, "last"):
			return s.pick(ds.LastNames)
		}
		return s.pick(ds.FirstNames) + " " + s.pick(ds.LastNames)
	case containsAny(name, "title", "subject"):
		return s.pick(ds.Titles)
	case containsAny(name, "description", "comment", "note"):
		return s.pick(ds.Descriptions)
	case strings.Contains(name, "status"):
		return s.pick(ds.Statuses)
	case containsAny(name, "category", "type"):
		return s.pick(ds.Categories)
	case containsAny(name, "company", "organization"):
		return s.pick(ds.Companies)
	case strings.Contains(name, "city"):
		return s.pick(ds.Cities)
	case strings.Contains(name, "country"):
		return s.pick(ds.Countries)
	}
	return fmt.Sprintf("Sample %s %d", fieldName, s.rnd.IntN(1000))
}
