package domain

// RoadNetwork describes road access to the property.
type RoadNetwork string

const (
	RoadUnknown  RoadNetwork = "unknown"
	RoadTarred   RoadNetwork = "tarred"
	RoadUntarred RoadNetwork = "untarred"
	RoadPartial  RoadNetwork = "partially_tarred"
)

// WaterSupply describes the main water source.
type WaterSupply string

const (
	WaterUnknown  WaterSupply = "unknown"
	WaterPublic   WaterSupply = "public"
	WaterBorehole WaterSupply = "borehole"
	WaterWell     WaterSupply = "well"
)

// Features is the set of property attributes captured in the features wizard step.
type Features struct {
	Furnished   bool        `json:"furnished"`
	Security    bool        `json:"security"`
	Parking     bool        `json:"parking"`
	Electricity bool        `json:"electricity"`
	Bedrooms    int         `json:"bedrooms"`
	Bathrooms   int         `json:"bathrooms"`
	WaterSupply WaterSupply `json:"water_supply"`
	RoadNetwork RoadNetwork `json:"road_network"`
}

// DefaultFeatures is used when the backend has no features record for a property.
func DefaultFeatures() Features {
	return Features{
		WaterSupply: WaterUnknown,
		RoadNetwork: RoadUnknown,
	}
}

// Normalize replaces empty or unrecognised enum values with their unknown variant.
func (f *Features) Normalize() {
	switch f.RoadNetwork {
	case RoadTarred, RoadUntarred, RoadPartial, RoadUnknown:
	default:
		f.RoadNetwork = RoadUnknown
	}
	switch f.WaterSupply {
	case WaterPublic, WaterBorehole, WaterWell, WaterUnknown:
	default:
		f.WaterSupply = WaterUnknown
	}
}
