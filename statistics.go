package rawvec

type Statistics struct {
	BlockCount   int
	BlockBytes   int
	LiveElements int
	LiveBytes    int
}

func (s *Statistics) Clear() {
	s.BlockCount = 0
	s.BlockBytes = 0
	s.LiveElements = 0
	s.LiveBytes = 0
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.BlockCount += other.BlockCount
	s.BlockBytes += other.BlockBytes
	s.LiveElements += other.LiveElements
	s.LiveBytes += other.LiveBytes
}

type DetailedStatistics struct {
	Statistics
	PeakBlockBytes    int
	GrowCount         int
	RelocatedElements int
}

func (s *DetailedStatistics) Clear() {
	s.Statistics.Clear()
	s.PeakBlockBytes = 0
	s.GrowCount = 0
	s.RelocatedElements = 0
}

func (s *DetailedStatistics) AddDetailedStatistics(other *DetailedStatistics) {
	s.Statistics.AddStatistics(&other.Statistics)
	s.GrowCount += other.GrowCount
	s.RelocatedElements += other.RelocatedElements

	if other.PeakBlockBytes > s.PeakBlockBytes {
		s.PeakBlockBytes = other.PeakBlockBytes
	}
}
