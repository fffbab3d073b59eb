package chunk

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/poiesic/vecload/core"
	"github.com/poiesic/vecload/progress"
	"github.com/tidwall/gjson"
)

// rootPath is the gjson path of the whole document.
const rootPath = "@this"

type jsonChunker struct {
	progress io.Writer
	logger   *slog.Logger
}

func (c *jsonChunker) Chunk(ctx context.Context, docs []*core.Document) ([]*core.Node, error) {
	var tracker *progress.Tracker
	if c.progress != nil {
		tracker = progress.NewTracker(c.progress, "Parsing", "docs", len(docs), 1)
		tracker.Start()
	}

	var nodes []*core.Node
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		docNodes, err := c.chunkDocument(doc)
		if err != nil {
			c.logger.Error("failed to chunk document", "path", doc.Path, "err", err)
			return nil, err
		}
		nodes = append(nodes, docNodes...)
		tracker.Increment(1)
	}
	tracker.Finish()

	c.logger.Info("chunked documents", "documents", len(docs), "nodes", len(nodes))
	return nodes, nil
}

func (c *jsonChunker) chunkDocument(doc *core.Document) ([]*core.Node, error) {
	if err := core.ValidateDocument(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrParse, err)
	}
	if !gjson.ValidBytes(doc.Content) {
		return nil, fmt.Errorf("%w: %s is not valid JSON", core.ErrParse, doc.Path)
	}

	root := gjson.ParseBytes(doc.Content)
	var elements []element
	if root.IsArray() {
		elements = flatten(root, "")
	} else {
		elements = []element{{path: rootPath, value: root}}
	}

	nodes := make([]*core.Node, 0, len(elements))
	for _, el := range elements {
		text := render(el.value)
		if text == "" {
			c.logger.Debug("skipping empty element", "path", doc.Path, "json_path", el.path)
			continue
		}
		node := core.NewNode(doc, len(nodes), text, map[string]string{
			MetaSource:   doc.Path,
			MetaJSONPath: el.path,
		})
		if err := core.ValidateNode(node); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", core.ErrParse, doc.Path, err)
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

type element struct {
	path  string
	value gjson.Result
}

// flatten returns the non-array leaves of arr in order, descending into
// nested arrays.
func flatten(arr gjson.Result, prefix string) []element {
	var out []element
	i := 0
	arr.ForEach(func(_, value gjson.Result) bool {
		path := strconv.Itoa(i)
		if prefix != "" {
			path = prefix + "." + path
		}
		i++
		if value.IsArray() {
			out = append(out, flatten(value, path)...)
		} else {
			out = append(out, element{path: path, value: value})
		}
		return true
	})
	return out
}

// render writes one line per leaf, depth first. Object keys form the prefix
// of each line; array elements add no key.
func render(value gjson.Result) string {
	var lines []string
	var walk func(keys []string, v gjson.Result)
	walk = func(keys []string, v gjson.Result) {
		switch {
		case v.IsObject():
			v.ForEach(func(key, child gjson.Result) bool {
				walk(append(keys[:len(keys):len(keys)], key.String()), child)
				return true
			})
		case v.IsArray():
			v.ForEach(func(_, child gjson.Result) bool {
				walk(keys, child)
				return true
			})
		default:
			lines = append(lines, strings.Join(append(keys[:len(keys):len(keys)], leaf(v)), " "))
		}
	}
	walk(nil, value)
	return strings.Join(lines, "\n")
}

func leaf(v gjson.Result) string {
	if v.Type == gjson.String {
		return v.String()
	}
	return v.Raw
}
