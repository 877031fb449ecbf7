package ruleengine

import (
	"fmt"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
	"gopkg.in/yaml.v3"

	"github.com/thehillman215/vectorbid/internal/apierrors"
	"github.com/thehillman215/vectorbid/internal/domain"
)

// rulePackFile is the on-disk YAML shape; it is converted to
// domain.RulePack (with every rule compiled) by Load.
type rulePackFile struct {
	Version string `yaml:"version"`
	Airline string `yaml:"airline"`
	Month   string `yaml:"month"`
	Meta    struct {
		ExpressionDialect string `yaml:"expression_dialect"`
	} `yaml:"meta"`
	HardRules []struct {
		ID          string `yaml:"id"`
		Description string `yaml:"description"`
		Severity    string `yaml:"severity"`
		Check       string `yaml:"check"`
	} `yaml:"hard_rules"`
	SoftRules []struct {
		Name        string  `yaml:"name"`
		Description string  `yaml:"description"`
		Score       string  `yaml:"score"`
		Weight      float64 `yaml:"weight"`
		Direction   string  `yaml:"direction"`
		ClampMin    float64 `yaml:"clamp_min"`
		ClampMax    float64 `yaml:"clamp_max"`
	} `yaml:"soft_rules"`
}

// packKey identifies one cached rule pack by (airline, month,
// file_version).
type packKey struct {
	Airline     string
	Month       string
	FileVersion string
}

// Cache is an LRU-backed rule-pack loader: a miss reads, parses, and
// compiles every rule exactly once; a hit returns the shared, read-only
// *domain.RulePack built from that pass.
type Cache struct {
	dir string
	lru *lru.Cache[packKey, *domain.RulePack]
}

// NewCache builds a Cache rooted at dir, holding up to capacity packs.
func NewCache(dir string, capacity int) (*Cache, error) {
	if capacity <= 0 {
		capacity = 32
	}
	c, err := lru.New[packKey, *domain.RulePack](capacity)
	if err != nil {
		return nil, apierrors.NewInternal("ruleengine.NewCache", "lru init failed", err)
	}
	return &Cache{dir: dir, lru: c}, nil
}

// Get returns the compiled rule pack for (airline, month), loading and
// compiling it on first access. fileVersion lets callers invalidate an
// entry when the backing file changes without restarting the process
// (pass the file's mtime or a content hash).
func (c *Cache) Get(airline, month, fileVersion string) (*domain.RulePack, error) {
	key := packKey{Airline: airline, Month: month, FileVersion: fileVersion}
	if rp, ok := c.lru.Get(key); ok {
		return rp, nil
	}
	path := filepath.Join(c.dir, airline, fmt.Sprintf("%s.yaml", month))
	rp, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.lru.Add(key, rp)
	return rp, nil
}

// Load reads and compiles one rule-pack YAML file from path.
func Load(path string) (*domain.RulePack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apierrors.NewNotFound("ruleengine.Load", "rule pack not found: "+path)
		}
		return nil, apierrors.NewInternal("ruleengine.Load", "rule pack read failed", err)
	}

	var file rulePackFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, apierrors.NewBadInput("ruleengine.Load", "rule pack YAML invalid: "+err.Error())
	}

	rp := &domain.RulePack{
		Version:  file.Version,
		Airline:  file.Airline,
		Month:    file.Month,
		Meta:     domain.RulePackMeta{ExpressionDialect: domain.DialectV1},
		Compiled: make(map[string]domain.CompiledExpr),
	}

	for _, hr := range file.HardRules {
		compiledExpr, err := Compile(hr.Check)
		if err != nil {
			return nil, apierrors.NewBadInput("ruleengine.Load", "hard rule "+hr.ID+": "+err.Error())
		}
		sev := domain.SeverityError
		if hr.Severity == string(domain.SeverityWarn) {
			sev = domain.SeverityWarn
		}
		rp.HardRules = append(rp.HardRules, domain.HardRule{
			ID:          hr.ID,
			Description: hr.Description,
			Severity:    sev,
			Check:       hr.Check,
		})
		rp.Compiled[hr.ID] = compiledExpr
	}

	for _, sr := range file.SoftRules {
		compiledExpr, err := Compile(sr.Score)
		if err != nil {
			return nil, apierrors.NewBadInput("ruleengine.Load", "soft rule "+sr.Name+": "+err.Error())
		}
		dir := domain.DirectionPrefer
		if sr.Direction == string(domain.DirectionAvoid) {
			dir = domain.DirectionAvoid
		}
		rp.SoftRules = append(rp.SoftRules, domain.SoftRule{
			Name:        sr.Name,
			Description: sr.Description,
			Score:       sr.Score,
			Weight:      sr.Weight,
			Direction:   dir,
			ClampMin:    sr.ClampMin,
			ClampMax:    sr.ClampMax,
		})
		rp.Compiled[sr.Name] = compiledExpr
	}

	return rp, nil
}

// PackSummary is one row of the /api/rule-packs listing: enough to
// identify a pack without loading and compiling its rules.
type PackSummary struct {
	Airline string
	Month   string
	Version string
}

// ListAll walks dir (laid out as <airline>/<month>.yaml) and returns a
// summary of every rule pack found, reading just enough of each file to
// report its version rather than compiling its rules.
func ListAll(dir string) ([]PackSummary, error) {
	airlineDirs, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, apierrors.NewInternal("ruleengine.ListAll", "rule pack directory read failed", err)
	}

	var out []PackSummary
	for _, ad := range airlineDirs {
		if !ad.IsDir() {
			continue
		}
		airline := ad.Name()
		files, err := os.ReadDir(filepath.Join(dir, airline))
		if err != nil {
			continue
		}
		for _, f := range files {
			if f.IsDir() || filepath.Ext(f.Name()) != ".yaml" {
				continue
			}
			month := f.Name()[:len(f.Name())-len(filepath.Ext(f.Name()))]
			data, err := os.ReadFile(filepath.Join(dir, airline, f.Name()))
			if err != nil {
				continue
			}
			var meta struct {
				Version string `yaml:"version"`
			}
			if err := yaml.Unmarshal(data, &meta); err != nil {
				continue
			}
			out = append(out, PackSummary{Airline: airline, Month: month, Version: meta.Version})
		}
	}
	return out, nil
}
