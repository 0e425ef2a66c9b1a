package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rafianfasaa/stunting/pkg/growth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig(t *testing.T) {
	testDir := t.TempDir()

	c1, err := ReadOrCreate(testDir)
	assert.NoError(t, err)
	assert.NotNil(t, c1)
	assert.Equal(t, Default(), c1)

	c1.Source = SourceDB
	c1.Database = "postgres://who@localhost/who"
	c1.Lookup = "nearest"
	c1.Locale = "en"
	c1.Server.CacheTTL = 90 * time.Second

	err = Save(testDir, c1)
	assert.NoError(t, err)

	c2, err := ReadOrCreate(testDir)
	assert.NoError(t, err)
	assert.NotNil(t, c2)
	assert.Equal(t, c1, c2)
}

func TestReadOrCreate_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", ".stunting")
	c, err := ReadOrCreate(dir)
	require.NoError(t, err)
	assert.Equal(t, SourceFiles, c.Source)

	_, err = os.Stat(filepath.Join(dir, FileName))
	assert.NoError(t, err)
}

func TestReadOrCreate_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("locale: en\nserver:\n  port: 9090\n"), 0600))

	c, err := ReadOrCreate(dir)
	require.NoError(t, err)
	assert.Equal(t, "en", c.Locale)
	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, defaultCacheTTL, c.Server.CacheTTL)
	assert.Equal(t, Default().References, c.References)
}

func TestReadOrCreate_Invalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("lookup: closest\n"), 0600))
	_, err := ReadOrCreate(dir)
	assert.Error(t, err)

	_, err = ReadOrCreate("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{"default", func(c *Config) {}, true},
		{"db source without files", func(c *Config) { c.Source = SourceDB; c.References = References{} }, true},
		{"files source missing path", func(c *Config) { c.References.FemaleHeight = "" }, false},
		{"unknown source", func(c *Config) { c.Source = "s3" }, false},
		{"bad locale", func(c *Config) { c.Locale = "fr" }, false},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, false},
		{"negative ttl", func(c *Config) { c.Server.CacheTTL = -time.Second }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestReferencesPath(t *testing.T) {
	r := Default().References
	assert.Contains(t, r.Path(growth.Male, growth.Length), "Panjang_Laki-laki")
	assert.Contains(t, r.Path(growth.Female, growth.Height), "Tinggi_Perempuan")
	assert.Empty(t, r.Path("x", growth.Height))
}

func TestResolvePath(t *testing.T) {
	dir := filepath.Join(string(filepath.Separator), "home", "nurse", ".stunting")

	tests := []struct {
		name string
		path string
		want string
	}{
		{"relative", "rumus/tinggi.xlsx", filepath.Join(dir, "rumus", "tinggi.xlsx")},
		{"absolute", "/srv/who/tinggi.xlsx", "/srv/who/tinggi.xlsx"},
		{"url", "https://example.org/who/tinggi.xlsx", "https://example.org/who/tinggi.xlsx"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolvePath(dir, tt.path))
		})
	}

	assert.Equal(t, "rumus/x.csv", ResolvePath("", "rumus/x.csv"), "no dir leaves the path as is")
}

func TestReferencesResolve(t *testing.T) {
	dir := t.TempDir()
	r := Default().References
	r.FemaleHeight = "https://example.org/fh.xlsx"

	got := r.Resolve(dir)
	assert.Equal(t, filepath.Join(dir, r.MaleLength), got.MaleLength)
	assert.True(t, strings.HasPrefix(got.MaleHeight, filepath.Join(dir, defaultReferenceDir)))
	assert.Equal(t, r.FemaleHeight, got.FemaleHeight)
	assert.False(t, filepath.IsAbs(r.MaleLength), "receiver unchanged")
}
