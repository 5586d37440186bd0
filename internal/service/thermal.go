package service

import (
	"math"
	"sync"
	"time"
)

// Stefan-Boltzmann constant, W·m⁻²·K⁻⁴ (CODATA 2018).
const StefanBoltzmannSigma = 5.670374419e-8

// Radiator defaults matching a 50 kg aluminum bus with a 1 m² panel.
const (
	DefaultEmissivity       = 0.92
	DefaultAreaM2           = 1.0
	DefaultAmbientK         = 293.15 // 20°C
	DefaultThresholdK       = 353.15 // 80°C safety trip
	DefaultThermalMassJPerK = 45000  // 50 kg × 900 J/kg·K
)

// RadiatorConfig is loaded once at startup and never mutated afterwards.
// All temperatures are Kelvin; Celsius belongs to the presentation layer.
type RadiatorConfig struct {
	Emissivity       float64 // (0,1]
	AreaM2           float64 // > 0
	AmbientK         float64 // ≥ 0, floor for the integration
	ThresholdK       float64 // throttle trip point
	ThermalMassJPerK float64 // how much energy moves the temperature 1 K
	InitialK         float64 // 0 means start at ambient
}

// normalize fills zero values with defaults and clamps nonsense inputs so a
// bad config can never produce an unphysical radiator.
func (c RadiatorConfig) normalize() RadiatorConfig {
	if c.Emissivity <= 0 || c.Emissivity > 1 {
		c.Emissivity = DefaultEmissivity
	}
	if c.AreaM2 <= 0 {
		c.AreaM2 = DefaultAreaM2
	}
	if c.AmbientK < 0 {
		c.AmbientK = DefaultAmbientK
	}
	if c.ThresholdK <= 0 {
		c.ThresholdK = DefaultThresholdK
	}
	if c.ThermalMassJPerK <= 0 {
		c.ThermalMassJPerK = DefaultThermalMassJPerK
	}
	if c.InitialK < c.AmbientK {
		c.InitialK = c.AmbientK
	}
	return c
}

// Radiator owns the node's thermal state. The mutex is the single serialized
// mutation path: headroom checks, heat application and cooldown all go through
// it, so concurrently completing jobs compose their updates in some total
// order and never lose one.
type Radiator struct {
	cfg RadiatorConfig

	mu         sync.Mutex
	tempK      float64
	lastUpdate time.Time

	now func() time.Time
}

// NewRadiator builds a radiator at the configured initial temperature.
func NewRadiator(cfg RadiatorConfig) *Radiator {
	cfg = cfg.normalize()
	return &Radiator{
		cfg:   cfg,
		tempK: cfg.InitialK,
		now:   time.Now,
	}
}

// Config returns the immutable radiator configuration.
func (r *Radiator) Config() RadiatorConfig { return r.cfg }

// RadiatedPowerWatts is the Stefan-Boltzmann law for a panel at temperature
// tK: ε·σ·A·T⁴. Pure function of temperature and config.
func (r *Radiator) RadiatedPowerWatts(tK float64) float64 {
	return r.cfg.Emissivity * StefanBoltzmannSigma * r.cfg.AreaM2 * tK * tK * tK * tK
}

// TemperatureK reports the temperature as of the most recent integration.
func (r *Radiator) TemperatureK() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tempK
}

// LastUpdate reports when the thermal state last changed.
func (r *Radiator) LastUpdate() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastUpdate
}

// CoolingCapacityWatts is the power currently radiated to space.
func (r *Radiator) CoolingCapacityWatts() float64 {
	return r.RadiatedPowerWatts(r.TemperatureK())
}

// CheckHeadroom reports whether the node may accept more work. Read-only.
func (r *Radiator) CheckHeadroom() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tempK < r.cfg.ThresholdK
}

// ApplyHeat integrates dT/dt = (load − radiated(T)) / thermalMass over
// elapsedSeconds with one explicit Euler step and returns the new temperature.
// The radiator cannot be put into an invalid state: non-finite or non-positive
// inputs are ignored, and the step is clamped so the temperature never falls
// below ambient.
func (r *Radiator) ApplyHeat(loadWatts, elapsedSeconds float64) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !isUsableStep(loadWatts, elapsedSeconds) {
		return r.tempK
	}

	netWatts := loadWatts - r.RadiatedPowerWatts(r.tempK)
	next := r.tempK + netWatts*elapsedSeconds/r.cfg.ThermalMassJPerK

	// A large cooling step may overshoot past ambient; physically the panel
	// just settles there.
	if next < r.cfg.AmbientK || math.IsNaN(next) {
		next = r.cfg.AmbientK
	}
	r.tempK = next
	r.lastUpdate = r.now()
	return r.tempK
}

// CoolDown is passive radiative cooling: ApplyHeat with zero load. Invoked on
// a cadence independent of job traffic so idle periods still cool the node.
func (r *Radiator) CoolDown(elapsedSeconds float64) float64 {
	return r.ApplyHeat(0, elapsedSeconds)
}

// isUsableStep rejects inputs that would corrupt the integration.
func isUsableStep(loadWatts, elapsedSeconds float64) bool {
	if elapsedSeconds <= 0 {
		return false
	}
	if math.IsNaN(elapsedSeconds) || math.IsInf(elapsedSeconds, 0) {
		return false
	}
	if math.IsNaN(loadWatts) || math.IsInf(loadWatts, 0) || loadWatts < 0 {
		return false
	}
	return true
}
