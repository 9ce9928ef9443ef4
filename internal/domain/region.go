package domain

import "strings"

// Region is a sales region used to tag orders and build the trending report
type Region struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// Regions lists every region an order can be tagged with
var Regions = []Region{
	{Name: "Atlanta, GA", Latitude: 33.7490, Longitude: -84.3880},
	{Name: "Miami, FL", Latitude: 25.7617, Longitude: -80.1918},
	{Name: "Orlando, FL", Latitude: 28.5383, Longitude: -81.3792},
	{Name: "Charlotte, NC", Latitude: 35.2271, Longitude: -80.8431},
	{Name: "Nashville, TN", Latitude: 36.1627, Longitude: -86.7816},
	{Name: "Birmingham, AL", Latitude: 33.5186, Longitude: -86.8104},
	{Name: "Columbia, SC", Latitude: 34.0007, Longitude: -81.0348},
}

// NormalizeRegion resolves user input to a known region name.
// Matching is exact after trimming and ignoring case; empty input maps to UnknownRegion.
func NormalizeRegion(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return UnknownRegion, nil
	}
	for _, r := range Regions {
		if strings.EqualFold(r.Name, input) {
			return r.Name, nil
		}
	}
	return "", ErrUnknownRegion
}

// RegionalTrending is the trending report of one region
type RegionalTrending struct {
	Region      Region           `json:"region"`
	Movies      []*TrendingMovie `json:"movies"`
	TotalOrders int              `json:"total_orders"`
}
