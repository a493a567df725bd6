package annotation

import "fmt"

// FalsePositiveType is the reason a detection was rejected in sequence review.
type FalsePositiveType string

const (
	FPAntenna     FalsePositiveType = "antenna"
	FPBuilding    FalsePositiveType = "building"
	FPCliff       FalsePositiveType = "cliff"
	FPDark        FalsePositiveType = "dark"
	FPDust        FalsePositiveType = "dust"
	FPHighCloud   FalsePositiveType = "high_cloud"
	FPLowCloud    FalsePositiveType = "low_cloud"
	FPLensFlare   FalsePositiveType = "lens_flare"
	FPLensDroplet FalsePositiveType = "lens_droplet"
	FPLight       FalsePositiveType = "light"
	FPRain        FalsePositiveType = "rain"
	FPTrail       FalsePositiveType = "trail"
	FPRoad        FalsePositiveType = "road"
	FPSky         FalsePositiveType = "sky"
	FPTree        FalsePositiveType = "tree"
	FPWaterBody   FalsePositiveType = "water_body"
	FPOther       FalsePositiveType = "other"
)

// FalsePositiveTypes lists every reason in display order.
var FalsePositiveTypes = []FalsePositiveType{
	FPAntenna, FPBuilding, FPCliff, FPDark, FPDust, FPHighCloud, FPLowCloud,
	FPLensFlare, FPLensDroplet, FPLight, FPRain, FPTrail, FPRoad, FPSky,
	FPTree, FPWaterBody, FPOther,
}

// ParseFalsePositiveType validates a persisted reason.
func ParseFalsePositiveType(s string) (FalsePositiveType, error) {
	for _, t := range FalsePositiveTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown false positive type %q", s)
}
