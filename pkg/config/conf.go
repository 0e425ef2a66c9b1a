package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rafianfasaa/stunting/pkg/growth"
	"gopkg.in/yaml.v3"
)

const (
	FileName = "config.yaml"
	dirMode  = 0700
	fileMode = 0600

	SourceFiles = "files"
	SourceDB    = "db"

	defaultReferenceDir = "rumus"
	defaultPort         = 8080
	defaultCacheTTL     = 10 * time.Minute
)

// Config represents app config object.
type Config struct {
	// Source is where reference tables are loaded from: files or db.
	Source     string     `json:"source" yaml:"source"`
	// References and Model may be URLs, absolute paths or paths relative to the
	// config directory.
	References References `json:"references" yaml:"references"`
	Database   string     `json:"database,omitempty" yaml:"database,omitempty"`
	Model      string     `json:"model,omitempty" yaml:"model,omitempty"`
	Lookup     string     `json:"lookup" yaml:"lookup"`
	Locale     string     `json:"locale" yaml:"locale"`
	LogLevel   string     `json:"log_level" yaml:"log_level"`
	Server     Server     `json:"server" yaml:"server"`
}

// References holds the paths of the four WHO tables.
type References struct {
	MaleLength   string `json:"male_length" yaml:"male_length"`
	FemaleLength string `json:"female_length" yaml:"female_length"`
	MaleHeight   string `json:"male_height" yaml:"male_height"`
	FemaleHeight string `json:"female_height" yaml:"female_height"`
}

// Path returns the configured file for a sex and standard.
func (r References) Path(sex growth.Sex, std growth.Standard) string {
	switch {
	case sex == growth.Male && std == growth.Length:
		return r.MaleLength
	case sex == growth.Female && std == growth.Length:
		return r.FemaleLength
	case sex == growth.Male && std == growth.Height:
		return r.MaleHeight
	case sex == growth.Female && std == growth.Height:
		return r.FemaleHeight
	}
	return ""
}

// Resolve returns a copy of r with relative paths resolved against dir.
func (r References) Resolve(dir string) References {
	return References{
		MaleLength:   ResolvePath(dir, r.MaleLength),
		FemaleLength: ResolvePath(dir, r.FemaleLength),
		MaleHeight:   ResolvePath(dir, r.MaleHeight),
		FemaleHeight: ResolvePath(dir, r.FemaleHeight),
	}
}

// ResolvePath joins a relative file path to dir. Empty values, absolute paths and URLs
// are returned as is.
func ResolvePath(dir, p string) string {
	if p == "" || dir == "" || filepath.IsAbs(p) || strings.Contains(p, "://") {
		return p
	}
	return filepath.Join(dir, p)
}

type Server struct {
	Port     int           `json:"port" yaml:"port"`
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl"`
}

// Default returns the configuration written on first run. The reference workbooks are
// expected under rumus/ in the config directory.
func Default() *Config {
	join := func(name string) string { return filepath.Join(defaultReferenceDir, name) }
	return &Config{
		Source: SourceFiles,
		References: References{
			MaleLength:   join("Panjang_Laki-laki_usia_0-2-tahun_z-score.xlsx"),
			FemaleLength: join("Panjang_Perempuan_usia_0-2-tahun_z-score-Panjang.xlsx"),
			MaleHeight:   join("Tinggi_Laki-laki_usia_2-5-tahun_z-score.xlsx"),
			FemaleHeight: join("Tinggi_Perempuan_usia_2-5-tahun_z-score.xlsx"),
		},
		Lookup:   growth.LookupAuto.String(),
		Locale:   string(growth.Indonesian),
		LogLevel: "info",
		Server: Server{
			Port:     defaultPort,
			CacheTTL: defaultCacheTTL,
		},
	}
}

// Validate checks enumerated values and required fields.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceFiles:
		for _, sex := range growth.Sexes {
			for _, std := range growth.Standards {
				if c.References.Path(sex, std) == "" {
					return errors.Errorf("reference file for %s/%s required", sex, std)
				}
			}
		}
	case SourceDB:
	default:
		return errors.Errorf("invalid source %q (want %s or %s)", c.Source, SourceFiles, SourceDB)
	}
	if _, err := growth.ParseLookupPolicy(c.Lookup); err != nil {
		return errors.Wrap(err, "invalid lookup")
	}
	if _, err := growth.ParseLocale(c.Locale); err != nil {
		return errors.Wrap(err, "invalid locale")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Server.CacheTTL < 0 {
		return errors.Errorf("invalid cache ttl %s", c.Server.CacheTTL)
	}
	return nil
}

func Save(dirPath string, c *Config) error {
	if dirPath == "" {
		return errors.New("config directory required")
	}
	if c == nil {
		return errors.New("config required")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	path := filepath.Join(dirPath, FileName)
	if err := os.WriteFile(path, b, fileMode); err != nil {
		return errors.Wrapf(err, "failed to write config file: %s", FileName)
	}
	return nil
}

// ReadOrCreate reads app config from directory or creates a new one.
func ReadOrCreate(dirPath string) (*Config, error) {
	if dirPath == "" {
		return nil, errors.New("config directory required")
	}

	if _, err := os.Stat(dirPath); errors.Is(err, os.ErrNotExist) {
		err := os.MkdirAll(dirPath, dirMode)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create dir: %s", dirPath)
		}
	}

	path := filepath.Join(dirPath, FileName)

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := Save(dirPath, Default()); err != nil {
			return nil, errors.Wrap(err, "failed to create default config")
		}
	}

	j, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening config file: %s", path)
	}
	defer j.Close()

	b, err := io.ReadAll(j)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading config file %s", path)
	}

	// fields absent from the file keep their defaults
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, errors.Wrapf(err, "error unmarshalling config file %s", path)
	}
	if err := c.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config file %s", path)
	}
	return c, nil
}

// GetOrCreateHomeDir returns the app directory in the home of the current user.
// The create flag is set to true if the directory was created.
func GetOrCreateHomeDir(name string) (path string, created bool, err error) {
	if name == "" {
		return "", false, errors.New("name cannot be empty")
	}

	if !strings.HasPrefix(name, ".") {
		name = "." + name
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", false, errors.Wrap(err, "failed to get user home dir")
	}

	dir := filepath.Join(home, name)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		if err := os.Mkdir(dir, dirMode); err != nil {
			return "", false, errors.Wrapf(err, "failed to create dir: %s", dir)
		}
		created = true
	}
	return dir, created, nil
}
