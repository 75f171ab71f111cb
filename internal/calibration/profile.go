package calibration

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/agbru/parfor/internal/config"
	apperrors "github.com/agbru/parfor/internal/errors"
	"github.com/agbru/parfor/internal/sysmon"
)

const (
	// DefaultProfileFileName is the profile's file name in the home directory.
	DefaultProfileFileName = ".parfor_calibration.json"
	// CurrentProfileVersion is bumped whenever the profile format changes.
	CurrentProfileVersion = 1
	// MaxProfileAge is how long a cached calibration is trusted.
	MaxProfileAge = 30 * 24 * time.Hour
)

// CalibrationProfile is the persisted outcome of a calibration, tied to the
// host it was measured on.
type CalibrationProfile struct {
	ProfileVersion int       `json:"profile_version"`
	NumCPU         int       `json:"num_cpu"`
	Parallelism    int       `json:"parallelism"`
	GOARCH         string    `json:"goarch"`
	GOOS           string    `json:"goos"`
	GoVersion      string    `json:"go_version"`
	WordSize       int       `json:"word_size"`
	CalibratedAt   time.Time `json:"calibrated_at"`

	Workload                string `json:"workload"`
	CalibrationN            int    `json:"calibration_n"`
	CalibrationTime         string `json:"calibration_time"`
	OptimalMinPartitionSize int    `json:"optimal_min_partition_size"`
}

// NewProfile returns a profile describing the current host.
func NewProfile() *CalibrationProfile {
	return &CalibrationProfile{
		ProfileVersion: CurrentProfileVersion,
		NumCPU:         runtime.NumCPU(),
		Parallelism:    sysmon.AvailableParallelism(),
		GOARCH:         runtime.GOARCH,
		GOOS:           runtime.GOOS,
		GoVersion:      runtime.Version(),
		WordSize:       32 << (^uint(0) >> 63),
		CalibratedAt:   time.Now(),
	}
}

// IsValid reports whether the profile was measured on a host like this one.
func (p *CalibrationProfile) IsValid() bool {
	if p == nil {
		return false
	}
	return p.ProfileVersion == CurrentProfileVersion &&
		p.NumCPU == runtime.NumCPU() &&
		p.GOARCH == runtime.GOARCH &&
		p.WordSize == 32<<(^uint(0)>>63) &&
		p.OptimalMinPartitionSize > 0
}

// IsStale reports whether the profile is older than maxAge.
func (p *CalibrationProfile) IsStale(maxAge time.Duration) bool {
	if p == nil {
		return true
	}
	return time.Since(p.CalibratedAt) > maxAge
}

func (p *CalibrationProfile) String() string {
	size := fmt.Sprintf("%d", p.OptimalMinPartitionSize)
	if p.OptimalMinPartitionSize == SequentialCandidate {
		size = "sequential"
	}
	return fmt.Sprintf("calibration profile v%d: min partition %s for %q (n=%d) on %d CPUs %s/%s, %s, measured %s",
		p.ProfileVersion, size, p.Workload, p.CalibrationN, p.NumCPU, p.GOOS, p.GOARCH,
		p.GoVersion, p.CalibratedAt.Format(time.RFC3339))
}

// SaveProfile writes the profile as indented JSON, creating parent
// directories as needed.
func (p *CalibrationProfile) SaveProfile(path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return apperrors.WrapError(err, "creating profile directory")
		}
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return apperrors.WrapError(err, "encoding profile")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return apperrors.WrapError(err, "writing profile %s", path)
	}
	return nil
}

func loadProfile(path string) (*CalibrationProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p CalibrationProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, apperrors.WrapError(err, "decoding profile %s", path)
	}
	return &p, nil
}

// LoadOrCreateProfile loads the profile at path, or returns a fresh one.
// loaded reports which happened.
func LoadOrCreateProfile(path string) (profile *CalibrationProfile, loaded bool) {
	p, err := loadProfile(path)
	if err != nil {
		return NewProfile(), false
	}
	return p, true
}

// GetDefaultProfilePath returns the profile location in the user's home
// directory, falling back to the working directory.
func GetDefaultProfilePath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return DefaultProfileFileName
	}
	return filepath.Join(home, DefaultProfileFileName)
}

// ResolveProfilePath returns path, or the default location when it is empty.
func ResolveProfilePath(path string) string {
	if path == "" {
		return GetDefaultProfilePath()
	}
	return path
}

// LoadCachedCalibration applies a valid, fresh profile's minimum partition
// size to cfg. A size given explicitly by the user always wins.
func LoadCachedCalibration(cfg config.AppConfig, path string) (config.AppConfig, bool) {
	if cfg.MinPartitionExplicit {
		return cfg, false
	}
	p, err := loadProfile(ResolveProfilePath(path))
	if err != nil || !p.IsValid() || p.IsStale(MaxProfileAge) {
		return cfg, false
	}
	cfg.MinPartitionSize = p.OptimalMinPartitionSize
	return cfg, true
}
