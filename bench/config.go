package bench

import (
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/kwertop/membench/membership"
	"gopkg.in/yaml.v3"
)

// SizeSpec is one benchmarked dataset size: N logins and Q queries. A zero Q
// is derived from N and the configured query ratio.
type SizeSpec struct {
	Logins  int
	Queries int
}

// ParseSizeSpec parses "N" or "N:Q". Underscores may separate digit groups.
func ParseSizeSpec(s string) (SizeSpec, error) {
	n, q, hasQ := strings.Cut(strings.TrimSpace(s), ":")
	var spec SizeSpec
	var err error
	if spec.Logins, err = parseCount(n); err != nil {
		return SizeSpec{}, errors.Wrapf(err, "size %q", s)
	}
	if hasQ {
		if spec.Queries, err = parseCount(q); err != nil {
			return SizeSpec{}, errors.Wrapf(err, "size %q", s)
		}
	}
	return spec, nil
}

// ParseSizeSpecs parses a comma separated list of sizes.
func ParseSizeSpecs(s string) ([]SizeSpec, error) {
	var specs []SizeSpec
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		spec, err := ParseSizeSpec(part)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func parseCount(s string) (int, error) {
	v, err := strconv.Atoi(strings.ReplaceAll(strings.TrimSpace(s), "_", ""))
	if err != nil {
		return 0, errors.Newf("%q is not a count", s)
	}
	if v <= 0 {
		return 0, errors.Newf("count %d must be positive", v)
	}
	return v, nil
}

// QueriesFor returns the query count of the size given the query ratio.
func (s SizeSpec) QueriesFor(ratio float64) int {
	if s.Queries > 0 {
		return s.Queries
	}
	return max(1, int(float64(s.Logins)*ratio))
}

func (s SizeSpec) String() string {
	if s.Queries > 0 {
		return strconv.Itoa(s.Logins) + ":" + strconv.Itoa(s.Queries)
	}
	return strconv.Itoa(s.Logins)
}

// UnmarshalYAML accepts an integer or an "N:Q" string.
func (s *SizeSpec) UnmarshalYAML(value *yaml.Node) error {
	spec, err := ParseSizeSpec(value.Value)
	if err != nil {
		return errors.Wrapf(err, "line %d", value.Line)
	}
	*s = spec
	return nil
}

// MarshalYAML writes the size in the form UnmarshalYAML reads.
func (s SizeSpec) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// SkipRule disables a method for the sizes in [MinSize, MaxSize]. A zero
// bound is open.
type SkipRule struct {
	Method  membership.Method `yaml:"method"`
	MinSize int               `yaml:"min_size,omitempty"`
	MaxSize int               `yaml:"max_size,omitempty"`
	Reason  string            `yaml:"reason,omitempty"`
}

// BloomConfig configures the Bloom filter builder.
type BloomConfig struct {
	FPRate   float64 `yaml:"fp_rate"`
	Backend  string  `yaml:"backend"`
	RedisURI string  `yaml:"redis_uri,omitempty"`
}

// CuckooConfig configures the Cuckoo filter builder.
type CuckooConfig struct {
	Capacity   int     `yaml:"capacity"`
	FPRate     float64 `yaml:"fp_rate"`
	BucketSize int     `yaml:"bucket_size"`
	Retries    int     `yaml:"retries"`
}

// Config is the benchmark configuration. It is read from YAML and then
// overridden by command line flags.
type Config struct {
	Sizes      []SizeSpec          `yaml:"sizes"`
	Methods    []membership.Method `yaml:"methods"`
	DataDir    string              `yaml:"data_dir"`
	PlotsDir   string              `yaml:"plots_dir"`
	QueryRatio float64             `yaml:"query_ratio"`
	Bloom      BloomConfig         `yaml:"bloom"`
	Cuckoo     CuckooConfig        `yaml:"cuckoo"`
	Skip       []SkipRule          `yaml:"skip"`
	// ReloadThreshold is the login count from which the dataset is dropped
	// after every method and loaded again for the next one.
	ReloadThreshold int  `yaml:"reload_threshold"`
	RecordLatencies bool `yaml:"record_latencies"`
	VerifyLabels    bool `yaml:"verify_labels"`
	// LoginHeader says the login files start with a "username" row.
	LoginHeader bool `yaml:"login_header"`
}

// DefaultSkipRules skip the linear scan above 1M logins and the Cuckoo filter
// from 100M logins.
func DefaultSkipRules() []SkipRule {
	return []SkipRule{
		{Method: membership.Linear, MinSize: 1_000_001, Reason: "linear scan above 1M logins"},
		{Method: membership.Cuckoo, MinSize: 100_000_000, Reason: "cuckoo filter from 100M logins"},
	}
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	opts := membership.DefaultOptions()
	return Config{
		Sizes: []SizeSpec{
			{10_000, 1_000}, {100_000, 10_000}, {1_000_000, 100_000},
			{10_000_000, 1_000_000}, {100_000_000, 10_000_000},
		},
		Methods:    append([]membership.Method(nil), membership.Methods...),
		DataDir:    ".",
		PlotsDir:   ".",
		QueryRatio: 0.1,
		Bloom: BloomConfig{
			FPRate:  opts.Bloom.FPRate,
			Backend: string(opts.Bloom.Backend),
		},
		Cuckoo: CuckooConfig{
			Capacity:   opts.Cuckoo.Capacity,
			FPRate:     opts.Cuckoo.FPRate,
			BucketSize: opts.Cuckoo.BucketSize,
			Retries:    opts.Cuckoo.Retries,
		},
		Skip:            DefaultSkipRules(),
		ReloadThreshold: 10_000_000,
	}
}

// LoadConfig reads the YAML file at path on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "reading config")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "parsing config %s", path)
	}
	return cfg, nil
}

// Validate rejects configurations the benchmark cannot run.
func (c *Config) Validate() error {
	if len(c.Sizes) == 0 {
		return errors.New("no sizes configured")
	}
	for _, s := range c.Sizes {
		if s.Logins <= 0 || s.Queries < 0 {
			return errors.Newf("invalid size %s", s)
		}
	}
	if len(c.Methods) == 0 {
		return errors.New("no methods configured")
	}
	for _, m := range c.Methods {
		if _, err := membership.ParseMethod(string(m)); err != nil {
			return err
		}
	}
	if c.QueryRatio <= 0 {
		return errors.Newf("query ratio %v must be positive", c.QueryRatio)
	}
	if c.Bloom.FPRate <= 0 || c.Bloom.FPRate >= 1 {
		return errors.Newf("bloom fp_rate %v must be within (0, 1)", c.Bloom.FPRate)
	}
	switch membership.Backend(c.Bloom.Backend) {
	case membership.BackendMem:
	case membership.BackendRedis:
		if c.Bloom.RedisURI == "" {
			return errors.New("bloom backend redis needs a redis_uri")
		}
	default:
		return errors.Newf("unknown bloom backend %q", c.Bloom.Backend)
	}
	if c.Cuckoo.FPRate <= 0 || c.Cuckoo.FPRate >= 1 {
		return errors.Newf("cuckoo fp_rate %v must be within (0, 1)", c.Cuckoo.FPRate)
	}
	if c.Cuckoo.BucketSize <= 0 {
		return errors.Newf("cuckoo bucket_size %d must be positive", c.Cuckoo.BucketSize)
	}
	if c.Cuckoo.Retries < 0 || c.Cuckoo.Capacity < 0 {
		return errors.New("cuckoo retries and capacity must not be negative")
	}
	for _, r := range c.Skip {
		if _, err := membership.ParseMethod(string(r.Method)); err != nil {
			return errors.Wrap(err, "skip rule")
		}
		if r.MaxSize != 0 && r.MaxSize < r.MinSize {
			return errors.Newf("skip rule for %s has max_size %d below min_size %d", r.Method, r.MaxSize, r.MinSize)
		}
	}
	return nil
}

// MembershipOptions converts the tuning parameters for the builders. The Redis
// connection of the Bloom backend is filled in by the caller.
func (c *Config) MembershipOptions() membership.Options {
	return membership.Options{
		Bloom: membership.BloomOptions{
			FPRate:  c.Bloom.FPRate,
			Backend: membership.Backend(c.Bloom.Backend),
		},
		Cuckoo: membership.CuckooOptions{
			Capacity:   c.Cuckoo.Capacity,
			FPRate:     c.Cuckoo.FPRate,
			BucketSize: c.Cuckoo.BucketSize,
			Retries:    c.Cuckoo.Retries,
		},
	}
}
