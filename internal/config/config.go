// Package config loads the fetchax command's profile file.
//
// A profile file holds named sets of client defaults:
//
//	profiles:
//	  default:
//	    baseURL: https://api.example.com/v1
//	    headers:
//	      Authorization: Bearer ${API_TOKEN}
//	    throwError: true
//	    timeout: 10s
//	  staging:
//	    baseURL: https://staging.example.com/v1
//	    redirect: manual
//	    skipVerify: true
//
// Header and param values, and the base URL, have environment variables
// expanded.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ansel1/merry"
	"github.com/gemalto/fetchax"
	"github.com/gemalto/fetchax/httpclient"
	"gopkg.in/yaml.v3"
)

// DefaultProfile is the profile used when none is named.
const DefaultProfile = "default"

// ErrUnknownProfile is returned by Profile for names not in the file.
var ErrUnknownProfile = merry.New("unknown profile")

// File is a parsed profile file.
type File struct {
	Profiles map[string]Profile `json:"profiles" yaml:"profiles"`
}

// Profile is a named set of client defaults.
type Profile struct {
	BaseURL      string            `json:"baseURL,omitempty" yaml:"baseURL,omitempty"`
	Headers      map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Params       map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
	ThrowError   *bool             `json:"throwError,omitempty" yaml:"throwError,omitempty"`
	ResponseType string            `json:"responseType,omitempty" yaml:"responseType,omitempty"`

	// transport settings
	Timeout     Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	Redirect    string   `json:"redirect,omitempty" yaml:"redirect,omitempty"`
	Credentials string   `json:"credentials,omitempty" yaml:"credentials,omitempty"`
	KeepAlive   *bool    `json:"keepAlive,omitempty" yaml:"keepAlive,omitempty"`
	SkipVerify  bool     `json:"skipVerify,omitempty" yaml:"skipVerify,omitempty"`
	Proxy       string   `json:"proxy,omitempty" yaml:"proxy,omitempty"`
}

// Load reads a profile file.  Files ending in .json are parsed as JSON,
// anything else as YAML.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, merry.Prepend(err, "reading config file")
	}
	return Parse(data, path)
}

// Parse parses profile file data.  path is only used to pick the format.
func Parse(data []byte, path string) (*File, error) {
	var f File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, merry.Prepend(err, "parsing JSON config")
		}
	default:
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, merry.Prepend(err, "parsing YAML config")
		}
	}

	for name, p := range f.Profiles {
		if err := p.validate(); err != nil {
			return nil, merry.Prependf(err, "profile %q", name)
		}
	}
	return &f, nil
}

// Profile returns the named profile.  An empty name means DefaultProfile,
// which may be absent: that resolves to an empty Profile.
func (f *File) Profile(name string) (Profile, error) {
	if f == nil {
		f = &File{}
	}
	if name == "" {
		return f.Profiles[DefaultProfile], nil
	}
	p, ok := f.Profiles[name]
	if !ok {
		return Profile{}, merry.Prependf(ErrUnknownProfile, "%s (have %s)", name, strings.Join(f.names(), ", "))
	}
	return p, nil
}

func (f *File) names() []string {
	names := make([]string, 0, len(f.Profiles))
	for name := range f.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (p Profile) validate() error {
	if _, err := fetchax.ParseResponseType(p.ResponseType); err != nil {
		return err
	}
	switch httpclient.RedirectPolicy(p.Redirect) {
	case "", httpclient.RedirectFollow, httpclient.RedirectError, httpclient.RedirectManual:
	default:
		return merry.Errorf("invalid redirect policy: %q", p.Redirect)
	}
	switch httpclient.CredentialsMode(p.Credentials) {
	case "", httpclient.CredentialsOmit, httpclient.CredentialsSameOrigin, httpclient.CredentialsInclude:
	default:
		return merry.Errorf("invalid credentials mode: %q", p.Credentials)
	}
	if p.Timeout < 0 {
		return merry.New("timeout cannot be negative")
	}
	return nil
}

// Options converts the profile into client options.  An *http.Client is
// only built when the profile has transport settings.
func (p Profile) Options() ([]fetchax.Option, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	var opts []fetchax.Option
	if p.BaseURL != "" {
		opts = append(opts, fetchax.BaseURL(os.ExpandEnv(p.BaseURL)))
	}
	for _, k := range sortedKeys(p.Headers) {
		opts = append(opts, fetchax.Header(k, os.ExpandEnv(p.Headers[k])))
	}
	for _, k := range sortedKeys(p.Params) {
		opts = append(opts, fetchax.QueryParam(k, os.ExpandEnv(p.Params[k])))
	}
	if p.ThrowError != nil {
		opts = append(opts, fetchax.ThrowError(*p.ThrowError))
	}
	if p.ResponseType != "" {
		opts = append(opts, fetchax.WithResponseType(fetchax.ResponseType(p.ResponseType)))
	}

	if hc := p.clientOptions(); len(hc) > 0 {
		opts = append(opts, fetchax.HTTPClient(hc...))
	}
	return opts, nil
}

func (p Profile) clientOptions() []httpclient.Option {
	var opts []httpclient.Option
	if p.Timeout > 0 {
		opts = append(opts, httpclient.Timeout(time.Duration(p.Timeout)))
	}
	if p.Redirect != "" {
		opts = append(opts, httpclient.Redirect(httpclient.RedirectPolicy(p.Redirect)))
	}
	if p.Credentials != "" {
		opts = append(opts, httpclient.Credentials(httpclient.CredentialsMode(p.Credentials)))
	}
	if p.KeepAlive != nil {
		opts = append(opts, httpclient.KeepAlive(*p.KeepAlive))
	}
	if p.SkipVerify {
		opts = append(opts, httpclient.SkipVerify(true))
	}
	if p.Proxy != "" {
		opts = append(opts, httpclient.ProxyURL(os.ExpandEnv(p.Proxy)))
	}
	return opts
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Duration is a time.Duration which is written as a string ("10s", "1m30s")
// in config files.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.parse(s)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return merry.Prepend(err, "duration must be a string")
	}
	return d.parse(s)
}

func (d *Duration) parse(s string) error {
	if s == "" {
		*d = 0
		return nil
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return merry.Prepend(err, "invalid duration")
	}
	*d = Duration(dur)
	return nil
}

// String returns the duration as a string.
func (d Duration) String() string {
	return time.Duration(d).String()
}
