package mapping

import (
	"github.com/google/uuid"

	"github.com/vharmon/flowsim/binding"
	"github.com/vharmon/flowsim/buffer"
	"github.com/vharmon/flowsim/noc"
	"github.com/vharmon/flowsim/schedule"
	"github.com/vharmon/flowsim/tsim"
)

// State is one node of the mapping flow's state machine (spec.md §9).
type State int

const (
	Start State = iota
	ModelNonLocalMemory
	ComputeStorageDist
	SelectStorageDist
	EstimateStorageDist
	EstimateLatencyConstraint
	EstimateBandwidthConstraint
	BindSDFGtoTile
	StaticOrderScheduleTiles
	AllocateTDMAtimeSlices
	OptimizeStorageSpaceAllocations
	ExtractCommunicationConstraints
	ScheduleCommunication
	UpdateBandwidthAllocations
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Start:
		return "Start"
	case ModelNonLocalMemory:
		return "ModelNonLocalMemory"
	case ComputeStorageDist:
		return "ComputeStorageDist"
	case SelectStorageDist:
		return "SelectStorageDist"
	case EstimateStorageDist:
		return "EstimateStorageDist"
	case EstimateLatencyConstraint:
		return "EstimateLatencyConstraint"
	case EstimateBandwidthConstraint:
		return "EstimateBandwidthConstraint"
	case BindSDFGtoTile:
		return "BindSDFGtoTile"
	case StaticOrderScheduleTiles:
		return "StaticOrderScheduleTiles"
	case AllocateTDMAtimeSlices:
		return "AllocateTDMAtimeSlices"
	case OptimizeStorageSpaceAllocations:
		return "OptimizeStorageSpaceAllocations"
	case ExtractCommunicationConstraints:
		return "ExtractCommunicationConstraints"
	case ScheduleCommunication:
		return "ScheduleCommunication"
	case UpdateBandwidthAllocations:
		return "UpdateBandwidthAllocations"
	case Completed:
		return "Completed"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// MemoryReport is the per-tile byte accounting
// OptimizeStorageSpaceAllocations produces, grounded on
// original_source/sdf/resource_allocation/flow/memory.cc.
type MemoryReport struct {
	UsedBytes   map[int]int64 // tile ID -> bytes demanded by its bound channels
	BudgetBytes map[int]int64 // tile ID -> TileSpec.MemoryBytes
	OverBudget  []int         // tile IDs whose UsedBytes exceeds BudgetBytes
}

// BindingReport is spec.md §6's binding output artifact.
type BindingReport struct {
	TileOf map[int]int // actor ID -> tile ID
	Tiles  []binding.Tile
}

// Result is the outcome of a completed or failed mapping Run.
type Result struct {
	RunID      uuid.UUID
	State      State // Completed or Failed
	Attempts   int
	Chosen     *buffer.DistributionSet
	Throughput tsim.Throughput

	Memory   MemoryReport
	Binding  BindingReport
	Schedule *schedule.Schedule
	NoC      *noc.Result // nil when the platform carries no network
}
