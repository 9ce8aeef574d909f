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


package main

import (
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/yojana/core"
)

// profileFlags describe the person being matched. Boolean attributes are
// only set on the profile when given on the command line.
func profileFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "age", Usage: "Age in years"},
		&cli.StringFlag{Name: "gender", Usage: "Gender (male, female, any)"},
		&cli.StringFlag{Name: "state", Usage: "State of residence"},
		&cli.StringSliceFlag{Name: "caste", Usage: "Caste category, repeatable (SC, ST, OBC, General)"},
		&cli.Int64Flag{Name: "income", Usage: "Annual household income in rupees"},
		&cli.BoolFlag{Name: "minority", Usage: "Belongs to a minority community"},
		&cli.BoolFlag{Name: "disabled", Usage: "Is differently abled"},
		&cli.BoolFlag{Name: "bpl", Usage: "Household is below the poverty line"},
		&cli.BoolFlag{Name: "student", Usage: "Is a student"},
	}
}

func profileFromFlags(c *cli.Context) (*core.UserProfile, error) {
	p := &core.UserProfile{
		State:  strings.TrimSpace(c.String("state")),
		Castes: c.StringSlice("caste"),
	}
	if c.IsSet("age") {
		p.Age = core.Int(c.Int("age"))
	}
	if c.IsSet("gender") {
		g, err := core.ParseGender(c.String("gender"))
		if err != nil {
			return nil, err
		}
		p.Gender = g
	}
	if c.IsSet("income") {
		p.Income = core.Int64(c.Int64("income"))
	}
	optionalBool := func(name string) *bool {
		if !c.IsSet(name) {
			return nil
		}
		return core.Bool(c.Bool(name))
	}
	p.IsMinority = optionalBool("minority")
	p.IsDifferentlyAbled = optionalBool("disabled")
	p.IsBPL = optionalBool("bpl")
	p.IsStudent = optionalBool("student")

	if err := core.ValidateProfile(p); err != nil {
		return nil, err
	}
	return p, nil
}
