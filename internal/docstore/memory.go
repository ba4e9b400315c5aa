package docstore

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// memoryDatabase keeps collections in process memory. It is meant for local development
// and tests; nothing survives a restart.
type memoryDatabase struct {
	mu          sync.Mutex
	collections map[string]*memoryCollection
}

// NewMemory returns an empty in-memory database.
func NewMemory() Database {
	return &memoryDatabase{collections: make(map[string]*memoryCollection)}
}

func (d *memoryDatabase) Collection(name string) Collection {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.collections[name]
	if !ok {
		c = &memoryCollection{}
		d.collections[name] = c
	}
	return c
}

func (d *memoryDatabase) Ping(context.Context) error  { return nil }
func (d *memoryDatabase) Close(context.Context) error { return nil }

type memoryCollection struct {
	mu      sync.RWMutex
	docs    []bson.M
	indexes []Index
}

// toDoc round-trips v through bson so stored values have the same shapes a real
// server would return.
func toDoc(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("docstore: marshal: %w", err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("docstore: unmarshal: %w", err)
	}
	return m, nil
}

func decode(doc bson.M, out any) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("docstore: marshal: %w", err)
	}
	return bson.Unmarshal(raw, out)
}

func decodeAll(docs []bson.M, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("docstore: out must be a pointer to a slice, got %T", out)
	}
	slice := rv.Elem()
	elemType := slice.Type().Elem()
	result := reflect.MakeSlice(slice.Type(), 0, len(docs))
	for _, d := range docs {
		elem := reflect.New(elemType)
		if err := decode(d, elem.Interface()); err != nil {
			return err
		}
		result = reflect.Append(result, elem.Elem())
	}
	slice.Set(result)
	return nil
}

// filter returns the documents matching f in insertion order. Callers hold the lock.
func (c *memoryCollection) filter(f bson.M) ([]bson.M, error) {
	var out []bson.M
	for _, d := range c.docs {
		ok, err := matches(d, f)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (c *memoryCollection) FindOne(_ context.Context, f bson.M, out any) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	found, err := c.filter(f)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		return ErrNoDocuments
	}
	return decode(found[0], out)
}

func (c *memoryCollection) Find(_ context.Context, f bson.M, opts FindOptions, out any) error {
	c.mu.RLock()
	found, err := c.filter(f)
	c.mu.RUnlock()
	if err != nil {
		return err
	}
	if opts.SortField != "" {
		sort.SliceStable(found, func(i, j int) bool {
			cmp, _ := compare(found[i][opts.SortField], found[j][opts.SortField])
			if opts.SortDesc {
				return cmp > 0
			}
			return cmp < 0
		})
	}
	if opts.Limit > 0 && int64(len(found)) > opts.Limit {
		found = found[:opts.Limit]
	}
	return decodeAll(found, out)
}

func (c *memoryCollection) InsertOne(_ context.Context, v any) error {
	doc, err := toDoc(v)
	if err != nil {
		return err
	}
	if id, _ := doc["_id"].(string); id == "" {
		doc["_id"] = uuid.NewString()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.docs {
		if equal(existing["_id"], doc["_id"]) {
			return fmt.Errorf("%w: _id %v", ErrDuplicateKey, doc["_id"])
		}
	}
	if err := c.checkUnique(doc, nil); err != nil {
		return err
	}
	c.docs = append(c.docs, doc)
	return nil
}

// checkUnique reports a violation of any unique index by doc, ignoring self.
func (c *memoryCollection) checkUnique(doc bson.M, self bson.M) error {
	for _, idx := range c.indexes {
		if !idx.Unique {
			continue
		}
		for _, other := range c.docs {
			if self != nil && equal(other["_id"], self["_id"]) {
				continue
			}
			same := true
			for _, k := range idx.Keys {
				if !equal(other[k.Field], doc[k.Field]) {
					same = false
					break
				}
			}
			if same {
				return fmt.Errorf("%w: %s", ErrDuplicateKey, indexName(idx))
			}
		}
	}
	return nil
}

func (c *memoryCollection) UpdateOne(_ context.Context, f bson.M, set bson.M) (int64, error) {
	update, err := toDoc(set)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i, d := range c.docs {
		ok, err := matches(d, f)
		if err != nil {
			return 0, err
		}
		if !ok {
			continue
		}
		next := make(bson.M, len(d)+len(update))
		for k, v := range d {
			next[k] = v
		}
		for k, v := range update {
			next[k] = v
		}
		if err := c.checkUnique(next, d); err != nil {
			return 0, err
		}
		c.docs[i] = next
		return 1, nil
	}
	return 0, nil
}

func (c *memoryCollection) DeleteOne(_ context.Context, f bson.M) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, d := range c.docs {
		ok, err := matches(d, f)
		if err != nil {
			return 0, err
		}
		if ok {
			c.docs = append(c.docs[:i], c.docs[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (c *memoryCollection) DeleteMany(_ context.Context, f bson.M) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := make([]bson.M, 0, len(c.docs))
	var deleted int64
	for _, d := range c.docs {
		ok, err := matches(d, f)
		if err != nil {
			return 0, err
		}
		if ok {
			deleted++
			continue
		}
		kept = append(kept, d)
	}
	c.docs = kept
	return deleted, nil
}

func (c *memoryCollection) CountDocuments(_ context.Context, f bson.M) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	found, err := c.filter(f)
	if err != nil {
		return 0, err
	}
	return int64(len(found)), nil
}

func (c *memoryCollection) Aggregate(_ context.Context, pipeline []bson.M, out any) error {
	c.mu.RLock()
	docs := append([]bson.M(nil), c.docs...)
	c.mu.RUnlock()

	for _, stage := range pipeline {
		if len(stage) != 1 {
			return fmt.Errorf("docstore: pipeline stage must have exactly one operator")
		}
		for op, arg := range stage {
			opts, ok := asMap(arg)
			if !ok {
				return fmt.Errorf("docstore: %s expects a document", op)
			}
			var err error
			switch op {
			case "$match":
				docs, err = matchStage(docs, opts)
			case "$group":
				docs, err = groupStage(docs, opts)
			default:
				err = fmt.Errorf("docstore: unsupported stage %s", op)
			}
			if err != nil {
				return err
			}
		}
	}
	return decodeAll(docs, out)
}

func matchStage(docs []bson.M, f bson.M) ([]bson.M, error) {
	var out []bson.M
	for _, d := range docs {
		ok, err := matches(d, f)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, d)
		}
	}
	return out, nil
}

// fieldRef resolves "$field" against doc; any other value is a constant.
func fieldRef(doc bson.M, expr any) any {
	if s, ok := expr.(string); ok && strings.HasPrefix(s, "$") {
		return doc[strings.TrimPrefix(s, "$")]
	}
	return expr
}

type accumulator struct {
	ints   int64
	floats float64
	float  bool
}

func (a *accumulator) add(v any) {
	switch x := v.(type) {
	case int32:
		a.ints += int64(x)
	case int64:
		a.ints += x
	case int:
		a.ints += int64(x)
	case float64:
		a.floats += x
		a.float = true
	}
}

func (a *accumulator) value() any {
	if a.float {
		return a.floats + float64(a.ints)
	}
	return a.ints
}

func groupStage(docs []bson.M, opts bson.M) ([]bson.M, error) {
	idExpr, ok := opts["_id"]
	if !ok {
		return nil, fmt.Errorf("docstore: $group requires _id")
	}

	type group struct {
		key  any
		accs map[string]*accumulator
	}
	var groups []*group
	find := func(key any) *group {
		for _, g := range groups {
			if equal(g.key, key) {
				return g
			}
		}
		g := &group{key: key, accs: make(map[string]*accumulator)}
		groups = append(groups, g)
		return g
	}

	for _, d := range docs {
		g := find(fieldRef(d, idExpr))
		for field, accSpec := range opts {
			if field == "_id" {
				continue
			}
			ops, ok := asMap(accSpec)
			if !ok {
				return nil, fmt.Errorf("docstore: accumulator for %s must be a document", field)
			}
			expr, ok := ops["$sum"]
			if !ok || len(ops) != 1 {
				return nil, fmt.Errorf("docstore: only $sum is supported in $group")
			}
			acc, ok := g.accs[field]
			if !ok {
				acc = &accumulator{}
				g.accs[field] = acc
			}
			acc.add(fieldRef(d, expr))
		}
	}

	out := make([]bson.M, 0, len(groups))
	for _, g := range groups {
		row := bson.M{"_id": g.key}
		for field, acc := range g.accs {
			row[field] = acc.value()
		}
		out = append(out, row)
	}
	return out, nil
}

func (c *memoryCollection) CreateIndex(_ context.Context, idx Index) error {
	if len(idx.Keys) == 0 {
		return fmt.Errorf("docstore: index needs at least one key")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.indexes {
		if indexName(existing) == indexName(idx) {
			return nil
		}
	}
	c.indexes = append(c.indexes, idx)
	return nil
}

func indexName(idx Index) string {
	parts := make([]string, 0, len(idx.Keys))
	for _, k := range idx.Keys {
		dir := "1"
		if k.Desc {
			dir = "-1"
		}
		parts = append(parts, k.Field+"_"+dir)
	}
	return strings.Join(parts, "_")
}
