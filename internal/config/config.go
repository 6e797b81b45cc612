package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vvka-141/edseed/internal/record"
	"github.com/vvka-141/edseed/pkg/edseed"
	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

const ConfigFileName = "edseed.yaml"

// Connection holds the non-secret sink settings. The URL and the service
// key only ever come from the environment.
type Connection struct {
	AuthMethod     string `yaml:"auth_method,omitempty"`
	AWSRegion      string `yaml:"aws_region,omitempty"`
	GoogleInstance string `yaml:"google_instance,omitempty"`
	AzureTenantID  string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID  string `yaml:"azure_client_id,omitempty"`
}

// Sources are paths relative to DataDir unless absolute. Schools lists
// the directory inputs in priority order, later files winning.
type Sources struct {
	Attendance  string   `yaml:"attendance"`
	Enrollment  string   `yaml:"enrollment"`
	Assessments string   `yaml:"assessments"`
	Schools     []string `yaml:"schools"`
}

type ProjectConfig struct {
	DataDir    string     `yaml:"data_dir"`
	LogDir     string     `yaml:"log_dir"`
	BatchSize  int        `yaml:"batch_size"`
	Timeout    string     `yaml:"timeout"`
	Sources    Sources    `yaml:"sources"`
	Connection Connection `yaml:"connection"`
}

var (
	attendanceFile  = "student_attendance/Student_Attendance_20251204.csv"
	enrollmentFile  = "enrollment/Enrollment__Grade,_Race_Ethnicity,_Gender,_and_Selected_Populations_20251204.csv"
	assessmentsFile = "mcas_achievement_results/MCAS_Achievement_Results_20251204.csv"
)

// Default returns the configuration used when no file is present.
func Default() *ProjectConfig {
	cfg := &ProjectConfig{}
	cfg.applyDefaults()
	return cfg
}

func defaultSchoolSources() []string {
	return []string{
		enrollmentFile,
		assessmentsFile,
		attendanceFile,
		"class_size/Class_Size_by_Gender,_Race_Ethnicity,_and_Selected_Populations_20251204.csv",
		"student_attrition/Student_Attrition_20251204.csv",
		"student_discipline/Student_Discipline_20251204.csv",
		"student_mobility_rate/Student_Mobility_Rate_20251204.csv",
		"graduation_rates/High_School_Graduation_Rates_20251204.csv",
	}
}

// Load reads path, which is either the config file or a directory
// containing ConfigFileName. Unset fields take their defaults.
func Load(path string) (*ProjectConfig, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, ConfigFileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *ProjectConfig) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = edseed.DefaultDataDir
	}
	if c.LogDir == "" {
		c.LogDir = edseed.DefaultLogDir
	}
	if c.BatchSize == 0 {
		c.BatchSize = edseed.DefaultBatchSize
	}
	if c.Sources.Attendance == "" {
		c.Sources.Attendance = attendanceFile
	}
	if c.Sources.Enrollment == "" {
		c.Sources.Enrollment = enrollmentFile
	}
	if c.Sources.Assessments == "" {
		c.Sources.Assessments = assessmentsFile
	}
	if len(c.Sources.Schools) == 0 {
		c.Sources.Schools = defaultSchoolSources()
	}
}

// Validate reports every invalid field at once.
func (c *ProjectConfig) Validate() error {
	var errs []error
	if c.BatchSize < 0 {
		errs = append(errs, fmt.Errorf("batch_size must be positive, got %d: %w", c.BatchSize, edseed.ErrInvalidConfig))
	}
	if _, err := c.TimeoutDuration(); err != nil {
		errs = append(errs, err)
	}
	if _, err := edseed.ParseAuthMethod(c.Connection.AuthMethod); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// TimeoutDuration parses Timeout; empty means edseed.DefaultTimeout.
func (c *ProjectConfig) TimeoutDuration() (time.Duration, error) {
	if strings.TrimSpace(c.Timeout) == "" {
		return edseed.DefaultTimeout, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, edseed.ErrInvalidConfig)
	}
	return d, nil
}

// SourcesFor resolves the input paths of domain against DataDir.
func (c *ProjectConfig) SourcesFor(domain string) ([]string, error) {
	var paths []string
	switch domain {
	case record.DomainAttendance:
		paths = []string{c.Sources.Attendance}
	case record.DomainEnrollment:
		paths = []string{c.Sources.Enrollment}
	case record.DomainAssessments:
		paths = []string{c.Sources.Assessments}
	case record.DomainSchools:
		paths = c.Sources.Schools
	default:
		return nil, fmt.Errorf("unknown domain %q: %w", domain, edseed.ErrInvalidConfig)
	}

	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = c.resolve(p)
	}
	return out, nil
}

func (c *ProjectConfig) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.DataDir, p)
}
