package vector

import (
	"unsafe"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/manualmem/rawvec"
)

// AddStatistics sums this vector's storage and live-element statistics into the
// statistics currently present in the provided rawvec.Statistics object.
func (v *Vector[T]) AddStatistics(stats *rawvec.Statistics) {
	var zero T
	elemSize := int(unsafe.Sizeof(zero))

	if v.Cap() > 0 {
		stats.BlockCount++
		stats.BlockBytes += v.Cap() * elemSize
	}
	stats.LiveElements += v.size
	stats.LiveBytes += v.size * elemSize
}

// AddDetailedStatistics sums this vector's statistics, including growth counters,
// into the statistics currently present in the provided rawvec.DetailedStatistics
// object.
func (v *Vector[T]) AddDetailedStatistics(stats *rawvec.DetailedStatistics) {
	v.AddStatistics(&stats.Statistics)
	stats.GrowCount += v.growCount
	stats.RelocatedElements += v.relocatedElements
}

// JsonData populates a json object with information about this vector.
func (v *Vector[T]) JsonData(json jwriter.ObjectState) {
	var zero T
	elemSize := int(unsafe.Sizeof(zero))

	json.Name("Size").Int(v.size)
	json.Name("Capacity").Int(v.Cap())
	json.Name("BlockBytes").Int(v.Cap() * elemSize)
	json.Name("Grows").Int(v.growCount)
	json.Name("RelocatedElements").Int(v.relocatedElements)
}

// BuildStatsString returns a JSON description of this vector's storage state.
func (v *Vector[T]) BuildStatsString() string {
	writer := jwriter.NewWriter()

	obj := writer.Object()
	v.JsonData(obj)
	obj.End()

	return string(writer.Bytes())
}
