// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package postgres

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/poiesic/yojana/core"
)

// casteTags are the caste values the scraper copies into tags.
var casteTags = map[string]string{
	"sc":      "SC",
	"st":      "ST",
	"obc":     "OBC",
	"general": "General",
	"ews":     "EWS",
	"pvtg":    "PVTG",
}

func castesFromTags(tags []string) []string {
	var castes []string
	for _, tag := range tags {
		if caste, ok := casteTags[core.Fold(tag)]; ok {
			castes = append(castes, caste)
		}
	}
	return castes
}

// genderFromTags restricts a scheme to one gender only when its tags name
// that gender and not the other.
func genderFromTags(tags []string) core.Gender {
	var female, male bool
	for _, tag := range tags {
		switch core.Fold(tag) {
		case "female", "women", "woman", "girl", "girls":
			female = true
		case "male", "men", "man", "boy", "boys":
			male = true
		}
	}
	switch {
	case female && !male:
		return core.GenderFemale
	case male && !female:
		return core.GenderMale
	default:
		return core.GenderAny
	}
}

// parseAgeRange reads the age JSONB document. The scraper stores whatever
// the upstream API returned, so several shapes are accepted:
//
//	{"min": 18, "max": 60}
//	{"gte": 18, "lte": 60}
//	{"general": {"gte": 18, "lte": 60}, "sc": {"gte": 18, "lte": 65}}
//
// Nested groups are merged into the widest range. Null or empty yields no bounds.
func parseAgeRange(raw []byte) (*int, *int, error) {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" || text == "{}" || text == "[]" {
		return nil, nil, nil
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil, err
	}

	var lo, hi *int
	if err := collectAges(doc, &lo, &hi, 0); err != nil {
		return nil, nil, err
	}
	if lo != nil && hi != nil && *lo > *hi {
		return nil, nil, fmt.Errorf("min age %d above max age %d", *lo, *hi)
	}
	return lo, hi, nil
}

func collectAges(node any, lo, hi **int, depth int) error {
	if depth > 3 {
		return nil
	}
	switch v := node.(type) {
	case map[string]any:
		for key, child := range v {
			switch strings.ToLower(key) {
			case "min", "gte", "age_min", "minage", "from":
				age, err := toAge(child)
				if err != nil {
					return err
				}
				if *lo == nil || age < **lo {
					*lo = &age
				}
			case "max", "lte", "age_max", "maxage", "to":
				age, err := toAge(child)
				if err != nil {
					return err
				}
				if *hi == nil || age > **hi {
					*hi = &age
				}
			default:
				if err := collectAges(child, lo, hi, depth+1); err != nil {
					return err
				}
			}
		}
	case []any:
		for _, child := range v {
			if err := collectAges(child, lo, hi, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

func toAge(v any) (int, error) {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || f < 0 || f > core.MaxAge {
		return 0, fmt.Errorf("age bound %v out of range", v)
	}
	return int(f), nil
}
