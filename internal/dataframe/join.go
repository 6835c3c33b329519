package dataframe

import (
	"log/slog"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/paveg/colframe/internal/config"
	"github.com/paveg/colframe/internal/dtype"
	dferrors "github.com/paveg/colframe/internal/errors"
	"github.com/paveg/colframe/internal/monitoring"
	"github.com/paveg/colframe/internal/parallel"
	"github.com/paveg/colframe/internal/series"
)

// noMatch marks a left row without a partner in the right frame.
const noMatch = -1

// JoinType represents the type of join operation
type JoinType int

const (
	InnerJoin JoinType = iota
	LeftJoin
	OuterJoin
)

func (jt JoinType) String() string {
	switch jt {
	case InnerJoin:
		return "inner"
	case LeftJoin:
		return "left"
	case OuterJoin:
		return "outer"
	default:
		return "unknown"
	}
}

// JoinOptions specifies parameters for join operations
type JoinOptions struct {
	Type     JoinType
	LeftKey  string // key column of the left DataFrame
	RightKey string // key column of the right DataFrame; defaults to LeftKey
	// Suffix is appended to right columns whose name is already taken by a
	// left column. Empty means config.JoinSuffix; if that is empty too, such
	// a collision fails the join.
	Suffix string
}

// outputColumn is one right-hand column of the join result.
type outputColumn struct {
	source string
	name   string
}

// joinIndices pairs left rows with right rows; noMatch on either side yields
// nulls. The first scanned pairs come from looking up every left row; any
// pairs after them are right rows that matched nothing (outer joins only).
type joinIndices struct {
	left   []int
	right  []int
	scanned int
}

// Join combines df with right by equality of the key columns.
//
// Output rows follow the left frame's order; a left row matching several
// right rows produces one row per match, in right-frame order. Null keys never
// match. For LeftJoin and OuterJoin an unmatched left row is kept once with
// nulls in every right column. OuterJoin then appends every right row that
// matched no left row, in right-frame order, with nulls in the left columns.
// The result has the left columns followed by the right ones, minus the right
// key when both keys share a name. In that case an outer join fills the key
// column from the right key on right-only rows, and the column takes the
// common key type.
func (df *DataFrame) Join(right *DataFrame, options *JoinOptions) (*DataFrame, error) {
	if options == nil {
		return nil, dferrors.NewInvalidInputError("Join", "join options are required")
	}
	if options.Type != InnerJoin && options.Type != LeftJoin && options.Type != OuterJoin {
		return nil, dferrors.NewInvalidInputError("Join", "unsupported join type "+options.Type.String())
	}
	start := time.Now()
	opts := *options
	if opts.RightKey == "" {
		opts.RightKey = opts.LeftKey
	}
	cfg := config.GetGlobalConfig()
	if opts.Suffix == "" {
		opts.Suffix = cfg.JoinSuffix
	}

	leftKey, rightKey, err := joinKeys(df, right, opts)
	if err != nil {
		return nil, err
	}
	defer leftKey.Release()
	defer rightKey.Release()

	plan, err := planRightColumns(df, right, opts)
	if err != nil {
		return nil, err
	}

	var (
		idx      *series.KeyIndex
		pairs    joinIndices
		strategy = "sequential"
	)
	if df.Len() > cfg.ParallelThreshold && right.Len() > cfg.ParallelThreshold {
		strategy = "partitioned"
		pool := parallel.NewWorkerPoolFromConfig(cfg)
		defer pool.Close()
		if idx, err = buildIndexPartitioned(pool, rightKey, cfg.ChunkSize); err != nil {
			return nil, err
		}
		if pairs, err = lookupPartitioned(pool, leftKey, idx, opts.Type, cfg.ChunkSize); err != nil {
			return nil, err
		}
	} else {
		idx = buildIndex(rightKey)
		pairs = lookupRows(leftKey, idx, opts.Type, parallel.Range{Start: 0, End: leftKey.Len()})
	}
	pairs.scanned = len(pairs.left)
	if opts.Type == OuterJoin {
		appendUnmatchedRight(&pairs, right.Len())
	}

	config.Logger().Debug("hash join",
		slog.String("type", opts.Type.String()),
		slog.String("strategy", strategy),
		slog.Int("left_rows", df.Len()),
		slog.Int("right_rows", right.Len()),
		slog.Int("distinct_keys", idx.Len()),
		slog.Int("output_rows", len(pairs.left)),
	)
	monitoring.RecordGlobal(monitoring.OperationMetrics{
		Operation:    "join." + opts.Type.String(),
		Duration:     time.Since(start),
		RowsIn:       int64(df.Len() + right.Len()),
		RowsOut:      int64(len(pairs.left)),
		DistinctKeys: int64(idx.Len()),
		Parallel:     strategy == "partitioned",
	})

	var coalesce *coalescedKey
	if opts.Type == OuterJoin && opts.LeftKey == opts.RightKey {
		coalesce = &coalescedKey{name: opts.LeftKey, left: leftKey, right: rightKey}
	}
	return materialize(df, right, plan, pairs, coalesce)
}

// joinKeys resolves both key columns and casts them to a common type. The
// returned Series are owned by the caller.
func joinKeys(left, right *DataFrame, opts JoinOptions) (*series.Series, *series.Series, error) {
	lk, ok := left.Column(opts.LeftKey)
	if !ok {
		return nil, nil, dferrors.NewJoinError(opts.LeftKey, dferrors.ErrMissingKeyColumn,
			"left frame has no column "+opts.LeftKey)
	}
	rk, ok := right.Column(opts.RightKey)
	if !ok {
		return nil, nil, dferrors.NewJoinError(opts.RightKey, dferrors.ErrMissingKeyColumn,
			"right frame has no column "+opts.RightKey)
	}

	common, ok := dtype.JoinCompatible(lk.DataType(), rk.DataType())
	if !ok {
		return nil, nil, dferrors.NewJoinError(opts.LeftKey, dferrors.ErrKeyTypeMismatch,
			"cannot join "+lk.DataType().String()+" with "+rk.DataType().String())
	}

	lc, err := lk.Cast(common)
	if err != nil {
		return nil, nil, err
	}
	rc, err := rk.Cast(common)
	if err != nil {
		lc.Release()
		return nil, nil, err
	}
	return lc, rc, nil
}

// planRightColumns decides the names of the right-hand output columns.
func planRightColumns(left, right *DataFrame, opts JoinOptions) ([]outputColumn, error) {
	taken := make(map[string]bool, left.Width()+right.Width())
	for _, name := range left.Columns() {
		taken[name] = true
	}

	plan := make([]outputColumn, 0, right.Width())
	for _, name := range right.Columns() {
		if name == opts.RightKey && opts.LeftKey == opts.RightKey {
			continue
		}
		out := name
		if taken[out] {
			if opts.Suffix == "" {
				return nil, dferrors.NewJoinError(name, dferrors.ErrSchemaCollision,
					"column "+name+" exists in both frames and no suffix is set")
			}
			out = name + opts.Suffix
			if taken[out] {
				return nil, dferrors.NewJoinError(out, dferrors.ErrSchemaCollision,
					"suffixed column "+out+" still collides")
			}
		}
		taken[out] = true
		plan = append(plan, outputColumn{source: name, name: out})
	}
	return plan, nil
}

// buildIndex maps every non-null key to the ascending rows holding it.
func buildIndex(key *series.Series) *series.KeyIndex {
	return buildRange(key, parallel.Range{Start: 0, End: key.Len()})
}

func buildRange(key *series.Series, r parallel.Range) *series.KeyIndex {
	idx := series.NewKeyIndex(r.Len())
	var buf []byte
	for i := r.Start; i < r.End; i++ {
		k, h, ok := key.HashKey(i, buf)
		buf = k
		if ok {
			idx.Insert(k, h, i)
		}
	}
	return idx
}

// buildIndexPartitioned builds one index per chunk and merges them in chunk
// order, which keeps every row list ascending.
func buildIndexPartitioned(pool *parallel.WorkerPool, key *series.Series, chunkSize int) (*series.KeyIndex, error) {
	parts, err := parallel.ProcessRanges(pool, key.Len(), chunkSize, func(r parallel.Range) *series.KeyIndex {
		return buildRange(key, r)
	})
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return series.NewKeyIndex(0), nil
	}
	idx := parts[0]
	for _, p := range parts[1:] {
		idx.Merge(p)
	}
	return idx, nil
}

// lookupRows looks up the left rows in r and emits the matching index pairs.
func lookupRows(key *series.Series, idx *series.KeyIndex, jt JoinType, r parallel.Range) joinIndices {
	out := joinIndices{
		left:  make([]int, 0, r.Len()),
		right: make([]int, 0, r.Len()),
	}
	var buf []byte
	for i := r.Start; i < r.End; i++ {
		k, h, ok := key.HashKey(i, buf)
		buf = k
		var matches []int
		if ok {
			matches = idx.Lookup(k, h)
		}
		if len(matches) == 0 {
			if jt != InnerJoin {
				out.left = append(out.left, i)
				out.right = append(out.right, noMatch)
			}
			continue
		}
		for _, m := range matches {
			out.left = append(out.left, i)
			out.right = append(out.right, m)
		}
	}
	return out
}

func lookupPartitioned(pool *parallel.WorkerPool, key *series.Series, idx *series.KeyIndex, jt JoinType, chunkSize int) (joinIndices, error) {
	parts, err := parallel.ProcessRanges(pool, key.Len(), chunkSize, func(r parallel.Range) joinIndices {
		return lookupRows(key, idx, jt, r)
	})
	if err != nil {
		return joinIndices{}, err
	}

	total := 0
	for _, p := range parts {
		total += len(p.left)
	}
	out := joinIndices{left: make([]int, 0, total), right: make([]int, 0, total)}
	for _, p := range parts {
		out.left = append(out.left, p.left...)
		out.right = append(out.right, p.right...)
	}
	return out, nil
}

// appendUnmatchedRight adds every right row absent from pairs, ascending,
// paired with noMatch.
func appendUnmatchedRight(pairs *joinIndices, rightRows int) {
	matched := roaring.New()
	for _, r := range pairs.right {
		if r != noMatch {
			matched.Add(uint32(r)) //nolint:gosec // row counts fit in uint32
		}
	}
	unmatched := roaring.Flip(matched, 0, uint64(rightRows)) //nolint:gosec // non-negative
	it := unmatched.Iterator()
	for it.HasNext() {
		pairs.left = append(pairs.left, noMatch)
		pairs.right = append(pairs.right, int(it.Next()))
	}
}

// coalescedKey is the shared key column of an outer join. Both keys are
// already cast to the common key type.
type coalescedKey struct {
	name  string
	left  *series.Series
	right *series.Series
}

// build takes the left key on scanned rows and the right key on the rest.
func (k *coalescedKey) build(pairs joinIndices) (*series.Series, error) {
	head, err := k.left.Take(pairs.left[:pairs.scanned], false)
	if err != nil {
		return nil, err
	}
	defer head.Release()
	tail, err := k.right.Take(pairs.right[pairs.scanned:], false)
	if err != nil {
		return nil, err
	}
	defer tail.Release()

	merged, err := head.Append(tail)
	if err != nil {
		return nil, err
	}
	if merged.Name() == k.name {
		return merged, nil
	}
	renamed := merged.Rename(k.name)
	merged.Release()
	return renamed, nil
}

// materialize gathers the output columns for the given index pairs.
func materialize(left, right *DataFrame, plan []outputColumn, pairs joinIndices, key *coalescedKey) (*DataFrame, error) {
	columns := make([]*series.Series, 0, left.Width()+len(plan))
	leftNulls := pairs.scanned < len(pairs.left)
	for _, s := range left.columns {
		var (
			out *series.Series
			err error
		)
		if key != nil && s.Name() == key.name {
			out, err = key.build(pairs)
		} else {
			out, err = s.Take(pairs.left, leftNulls)
		}
		if err != nil {
			releaseAll(columns)
			return nil, err
		}
		columns = append(columns, out)
	}

	for _, c := range plan {
		src, _ := right.Column(c.source)
		out, err := src.Take(pairs.right, true)
		if err != nil {
			releaseAll(columns)
			return nil, err
		}
		if c.name != c.source {
			renamed := out.Rename(c.name)
			out.Release()
			out = renamed
		}
		columns = append(columns, out)
	}

	return build(columns), nil
}
