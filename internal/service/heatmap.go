package service

import (
	"fmt"
	"sort"
	"strings"

	"crime-dashboard/internal/catalog"
	"crime-dashboard/internal/model"
	"crime-dashboard/internal/utils"
)

const (
	radiusBase  = 300.0
	radiusStep  = 300.0
	radiusLimit = 3000.0
)

// BucketRadius is the map circle radius in metres for a bucket count.
func BucketRadius(count int) float64 {
	return min(radiusBase+radiusStep*float64(count), radiusLimit)
}

// BuildHeatMap groups a unit's incidents by (city, category). Records of
// other units, unknown categories and municipalities outside the unit's
// area are skipped. Buckets follow the gazetteer city order, then the
// category order.
func BuildHeatMap(unit string, records []model.Incident) []model.HeatMapBucket {
	area, ok := catalog.AreaOf(unit)
	if !ok {
		return []model.HeatMapBucket{}
	}

	type key struct {
		city     string
		category model.CrimeCategory
	}
	counts := make(map[key]int)
	neighborhoods := make(map[key]map[string]struct{})

	for _, r := range records {
		if r.AISP != unit {
			continue
		}
		category, ok := r.Category()
		if !ok {
			continue
		}
		city, ok := catalog.CityInUnit(unit, r.Municipality)
		if !ok {
			continue
		}
		k := key{city: city.Name, category: category}
		counts[k]++
		if neighborhoods[k] == nil {
			neighborhoods[k] = make(map[string]struct{})
		}
		if n := utils.CollapseSpaces(r.Neighborhood); n != "" && n != model.NotAvailable {
			neighborhoods[k][n] = struct{}{}
		}
	}

	buckets := make([]model.HeatMapBucket, 0, len(counts))
	for _, city := range area.Cities {
		for _, category := range model.Categories {
			k := key{city: city.Name, category: category}
			n := counts[k]
			if n == 0 {
				continue
			}
			names := make([]string, 0, len(neighborhoods[k]))
			for name := range neighborhoods[k] {
				names = append(names, name)
			}
			sort.Strings(names)

			buckets = append(buckets, model.HeatMapBucket{
				ID:            bucketID(unit, city.Name, category),
				Unit:          unit,
				City:          city.Name,
				Category:      category,
				CategoryLabel: category.Label(),
				Count:         n,
				Neighborhoods: names,
				Lat:           city.Lat,
				Lng:           city.Lng,
				Radius:        BucketRadius(n),
			})
		}
	}

	return buckets
}

func bucketID(unit, city string, category model.CrimeCategory) string {
	slug := strings.ReplaceAll(utils.NormalizeMunicipality(city), " ", "-")
	return fmt.Sprintf("%s:%s:%s", strings.ReplaceAll(strings.ToLower(unit), " ", ""), slug, category)
}
