package sim

// resolveBirths hatches the eggs laid one incubation delay ago and appends
// the hatchlings. Nothing hatches until the delay has fully elapsed.
func (s *Simulation) resolveBirths() int {
	delay := int32(s.cfg.Demography.Delay)
	laidAt := s.tick - delay
	if laidAt < 1 {
		return 0
	}

	eggs := s.eggLog[laidAt]
	if eggs == 0 {
		return 0
	}

	hatched := s.binomial(eggs, s.cfg.Demography.Hatch)
	d := &s.cfg.DEB
	for i := 0; i < hatched; i++ {
		s.spawnHost(d.NatalLength, d.NatalShell, d.InitE)
	}
	return hatched
}
