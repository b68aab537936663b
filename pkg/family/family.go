// Package family reads and writes produced families. The JSON layout is the
// one earlier tooling emitted, so old result files load unchanged; YAML is
// accepted as well.
package family

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/sunflower-search/sunflower/pkg/config"
	"github.com/sunflower-search/sunflower/pkg/universe"
)

type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// Family is a serialized search result.
type Family struct {
	N        int     `json:"n" yaml:"n"`
	K        int     `json:"k" yaml:"k"`
	U        int     `json:"U" yaml:"U"`
	M        int     `json:"m" yaml:"m"`
	Strategy string  `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	Sets     [][]int `json:"family" yaml:"family"`
}

// New records sets with their elements in ascending order.
func New(n, k, u int, strategy string, sets []universe.Set) *Family {
	f := &Family{
		N:        n,
		K:        k,
		U:        u,
		M:        len(sets),
		Strategy: strategy,
		Sets:     make([][]int, len(sets)),
	}
	for i, s := range sets {
		f.Sets[i] = s.Elements()
	}
	return f
}

// FileName is the default output name for a run.
func FileName(n, k, m int) string {
	return fmt.Sprintf("sunflower_n%d_k%d_m%d.json", n, k, m)
}

// FormatOf picks the format from a file extension, defaulting to JSON.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	default:
		return JSON
	}
}

// Masks converts the stored sets back to bitmasks, checking them against
// the recorded parameters. N and U are inferred when absent.
func (f *Family) Masks() ([]universe.Set, error) {
	n, u := f.N, f.U
	if n == 0 && len(f.Sets) > 0 {
		n = len(f.Sets[0])
	}
	if u == 0 {
		u = config.MaxUniverse
	}
	if u > config.MaxUniverse {
		return nil, &config.ConfigurationError{Field: "U", Reason: fmt.Sprintf("universe size %d exceeds %d", u, config.MaxUniverse)}
	}

	sets := make([]universe.Set, len(f.Sets))
	seen := make(map[universe.Set]int, len(f.Sets))
	for i, elems := range f.Sets {
		if len(elems) != n {
			return nil, errors.Errorf("set %d has %d elements, expected %d", i, len(elems), n)
		}
		sorted := append([]int(nil), elems...)
		sort.Ints(sorted)
		for j, e := range sorted {
			if e < 0 || e >= u {
				return nil, errors.Errorf("set %d: element %d outside universe [0,%d)", i, e, u)
			}
			if j > 0 && sorted[j-1] == e {
				return nil, errors.Errorf("set %d: repeated element %d", i, e)
			}
		}
		s := universe.NewSet(sorted...)
		if prev, ok := seen[s]; ok {
			return nil, errors.Errorf("sets %d and %d are both %s", prev, i, s)
		}
		seen[s] = i
		sets[i] = s
	}
	if f.M != 0 && f.M != len(sets) {
		return nil, errors.Errorf("family declares m=%d but lists %d sets", f.M, len(sets))
	}
	return sets, nil
}

func (f *Family) Write(w io.Writer, format Format) error {
	switch format {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(f), "encoding family as json")
	case YAML:
		out, err := yaml.Marshal(f)
		if err != nil {
			return errors.Wrap(err, "encoding family as yaml")
		}
		_, err = w.Write(out)
		return err
	default:
		return errors.Errorf("unknown family format %q", format)
	}
}

// Read decodes either format; JSON documents are valid YAML.
func Read(r io.Reader) (*Family, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading family")
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("empty family document")
	}
	f := &Family{}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, errors.Wrap(err, "decoding family")
	}
	return f, nil
}

func Load(path string) (*Family, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	f, err := Read(file)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	return f, nil
}

func (f *Family) Save(path string) error {
	var buf bytes.Buffer
	if err := f.Write(&buf, FormatOf(path)); err != nil {
		return err
	}
	return errors.Wrapf(os.WriteFile(path, buf.Bytes(), 0o644), "saving %s", path)
}
