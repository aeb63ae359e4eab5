package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
)

const defaultPath = "."

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Timezone    string `json:"timezone" yaml:"timezone"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port     int `json:"port" yaml:"port"`
		Timeouts struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	// DataPortal configures the Chicago open-data (Socrata) endpoints.
	DataPortal *DataPortalConfig `json:"dataPortal" yaml:"dataPortal"`

	// PermitValidation configures the zombie-permit corroboration rule.
	PermitValidation PermitValidationConfig `json:"permitValidation" yaml:"permitValidation"`

	// SchoolZone configures the school-zone hard rule.
	SchoolZone SchoolZoneConfig `json:"schoolZone" yaml:"schoolZone"`

	// Traffic configures congestion-to-severity mapping.
	Traffic TrafficConfig `json:"traffic" yaml:"traffic"`

	// Risk configures route-risk scoring. The defaults are the published
	// policy values; they are configurable but changing them changes the
	// externally observable score contract.
	Risk RiskConfig `json:"risk" yaml:"risk"`

	// Alerts configures the notification pass.
	Alerts AlertsConfig `json:"alerts" yaml:"alerts"`

	// Scheduler configures the batch pass intervals.
	Scheduler SchedulerConfig `json:"scheduler" yaml:"scheduler"`

	// Firebase configuration for push notifications.
	Firebase *FirebaseConfig `json:"firebase" yaml:"firebase"`

	// PubSub configuration for hazard event publishing.
	PubSub *PubSubConfig `json:"pubsub" yaml:"pubsub"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// DataPortalConfig identifies the Socrata datasets the ingestion passes read.
type DataPortalConfig struct {
	BaseURL           string `json:"baseUrl" yaml:"baseUrl"`
	AppToken          string `json:"appToken" yaml:"appToken"`
	PermitsDataset    string `json:"permitsDataset" yaml:"permitsDataset"`
	ComplaintsDataset string `json:"complaintsDataset" yaml:"complaintsDataset"`
	SchoolsDataset    string `json:"schoolsDataset" yaml:"schoolsDataset"`
	TrafficDataset    string `json:"trafficDataset" yaml:"trafficDataset"`
	FetchLimit        int    `json:"fetchLimit" yaml:"fetchLimit"`
}

// PermitValidationConfig holds the corroboration parameters for permits.
type PermitValidationConfig struct {
	CorroborationRadiusMeters float64       `json:"corroborationRadiusMeters" yaml:"corroborationRadiusMeters"`
	Lookback                  time.Duration `json:"lookback" yaml:"lookback"`
	HazardTTL                 time.Duration `json:"hazardTtl" yaml:"hazardTtl"`
	ComplaintTypes            []string      `json:"complaintTypes" yaml:"complaintTypes"`
}

// SchoolZoneConfig holds school-zone parameters. The peak windows and the
// severity-5 rule are policy constants and live in the engine, not here.
type SchoolZoneConfig struct {
	ZoneRadiusMeters float64 `json:"zoneRadiusMeters" yaml:"zoneRadiusMeters"`
}

// TrafficConfig holds congestion mapping parameters.
type TrafficConfig struct {
	AssumedSpeedLimitMph float64       `json:"assumedSpeedLimitMph" yaml:"assumedSpeedLimitMph"`
	MinSeverity          int           `json:"minSeverity" yaml:"minSeverity"`
	HazardTTL            time.Duration `json:"hazardTtl" yaml:"hazardTtl"`
	OverrideRadiusMeters float64       `json:"overrideRadiusMeters" yaml:"overrideRadiusMeters"`
}

// RiskConfig holds the route-risk scoring constants.
type RiskConfig struct {
	BufferMeters      float64 `json:"bufferMeters" yaml:"bufferMeters"`
	ContributionScale float64 `json:"contributionScale" yaml:"contributionScale"`
	HighThreshold     int     `json:"highThreshold" yaml:"highThreshold"`
	ModerateThreshold int     `json:"moderateThreshold" yaml:"moderateThreshold"`
}

// AlertsConfig holds notification pass parameters.
type AlertsConfig struct {
	Cooldown    time.Duration `json:"cooldown" yaml:"cooldown"`
	MinSeverity int           `json:"minSeverity" yaml:"minSeverity"`
	DryRun      bool          `json:"dryRun" yaml:"dryRun"`
}

// SchedulerConfig holds the batch pass cadences.
type SchedulerConfig struct {
	PermitInterval  time.Duration `json:"permitInterval" yaml:"permitInterval"`
	SchoolInterval  time.Duration `json:"schoolInterval" yaml:"schoolInterval"`
	TrafficInterval time.Duration `json:"trafficInterval" yaml:"trafficInterval"`
	AlertInterval   time.Duration `json:"alertInterval" yaml:"alertInterval"`
	PruneInterval   time.Duration `json:"pruneInterval" yaml:"pruneInterval"`
}

// FirebaseConfig defines Firebase configuration for push notifications.
type FirebaseConfig struct {
	ProjectID       string `json:"projectId" yaml:"projectId"`
	CredentialsPath string `json:"credentialsPath" yaml:"credentialsPath"`
}

// PubSubConfig defines Pub/Sub configuration for event publishing.
type PubSubConfig struct {
	// Provider type: "local" for local HTTP or "google" for Google Pub/Sub
	Provider string `json:"provider" yaml:"provider"`

	ProjectID string `json:"projectId" yaml:"projectId"`
	TopicID   string `json:"topicId" yaml:"topicId"`

	// Local HTTP endpoint for development (for local provider)
	LocalEndpoint string `json:"localEndpoint" yaml:"localEndpoint"`
}

// LoadWithEnv loads .yaml files through koanf, layering environment
// variables on top of the file values.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			searchPaths = append(searchPaths, filepath.Join(pwd, path))
		}
	}

	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to a path and align each segment with
			// existing YAML keys, e.g. POSTGRES_SSLMODE -> postgres.sslMode.
			return canonicalizeEnvKey(k, existingConfigMap), v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	return cfg, nil
}

// applyDefaults fills missing values with the published engine defaults.
func (cfg *Config) applyDefaults() {
	if cfg.Env.Timezone == "" {
		cfg.Env.Timezone = "America/Chicago"
	}

	if cfg.DataPortal != nil {
		if cfg.DataPortal.BaseURL == "" {
			cfg.DataPortal.BaseURL = "https://data.cityofchicago.org"
		}
		if cfg.DataPortal.PermitsDataset == "" {
			cfg.DataPortal.PermitsDataset = "ydr8-5enu"
		}
		if cfg.DataPortal.ComplaintsDataset == "" {
			cfg.DataPortal.ComplaintsDataset = "v6vf-nfxy"
		}
		if cfg.DataPortal.SchoolsDataset == "" {
			cfg.DataPortal.SchoolsDataset = "9xs2-f89t"
		}
		if cfg.DataPortal.TrafficDataset == "" {
			cfg.DataPortal.TrafficDataset = "sxs8-h27x"
		}
		if cfg.DataPortal.FetchLimit <= 0 {
			cfg.DataPortal.FetchLimit = 5000
		}
	}

	if cfg.PermitValidation.CorroborationRadiusMeters <= 0 {
		cfg.PermitValidation.CorroborationRadiusMeters = 200
	}
	if cfg.PermitValidation.Lookback <= 0 {
		cfg.PermitValidation.Lookback = 48 * time.Hour
	}
	if cfg.PermitValidation.HazardTTL <= 0 {
		cfg.PermitValidation.HazardTTL = 168 * time.Hour
	}
	if len(cfg.PermitValidation.ComplaintTypes) == 0 {
		cfg.PermitValidation.ComplaintTypes = []string{"SVR", "NOI"}
	}

	if cfg.SchoolZone.ZoneRadiusMeters <= 0 {
		cfg.SchoolZone.ZoneRadiusMeters = 150
	}

	if cfg.Traffic.AssumedSpeedLimitMph <= 0 {
		cfg.Traffic.AssumedSpeedLimitMph = 30
	}
	if cfg.Traffic.MinSeverity <= 0 {
		cfg.Traffic.MinSeverity = 3
	}
	if cfg.Traffic.HazardTTL <= 0 {
		cfg.Traffic.HazardTTL = 30 * time.Minute
	}
	if cfg.Traffic.OverrideRadiusMeters <= 0 {
		cfg.Traffic.OverrideRadiusMeters = 200
	}

	if cfg.Risk.BufferMeters <= 0 {
		cfg.Risk.BufferMeters = 25
	}
	if cfg.Risk.ContributionScale <= 0 {
		cfg.Risk.ContributionScale = 25
	}
	if cfg.Risk.HighThreshold <= 0 {
		cfg.Risk.HighThreshold = 70
	}
	if cfg.Risk.ModerateThreshold <= 0 {
		cfg.Risk.ModerateThreshold = 40
	}

	if cfg.Alerts.Cooldown <= 0 {
		cfg.Alerts.Cooldown = 4 * time.Hour
	}
	if cfg.Alerts.MinSeverity <= 0 {
		cfg.Alerts.MinSeverity = 3
	}

	if cfg.Scheduler.PermitInterval <= 0 {
		cfg.Scheduler.PermitInterval = time.Hour
	}
	if cfg.Scheduler.SchoolInterval <= 0 {
		cfg.Scheduler.SchoolInterval = 15 * time.Minute
	}
	if cfg.Scheduler.TrafficInterval <= 0 {
		cfg.Scheduler.TrafficInterval = 15 * time.Minute
	}
	if cfg.Scheduler.AlertInterval <= 0 {
		cfg.Scheduler.AlertInterval = 5 * time.Minute
	}
	if cfg.Scheduler.PruneInterval <= 0 {
		cfg.Scheduler.PruneInterval = 10 * time.Minute
	}
}

// Location resolves the configured timezone.
func (cfg *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(cfg.Env.Timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "load timezone %s", cfg.Env.Timezone)
	}

	return loc, nil
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
