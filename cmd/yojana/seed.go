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
	"context"

	"github.com/poiesic/yojana/core"
)

// sampleSchemes are well-known national schemes for trying yojana
// without a scraper database.
func sampleSchemes() []*core.Scheme {
	return []*core.Scheme{
		{
			Slug:        "pm-kisan",
			Name:        "Pradhan Mantri Kisan Samman Nidhi (PM-KISAN)",
			Category:    "Agriculture",
			Description: "Income support scheme for farmers providing ₹6000 per year in three installments",
			Benefits:    "₹2000 every 4 months directly to farmers' bank accounts",
			Eligibility: "All landholding farmers' families",
			MinAge:      core.Int(18),
			Process:     "Online through PM-KISAN portal or through Common Service Centers",
			Documents:   "Aadhaar card, Bank account details, Land records",
			URL:         "https://pmkisan.gov.in/",
			Tags:        []string{"farmer", "agriculture", "income support", "kisan", "rural"},
		},
		{
			Slug:        "ab-pmjay",
			Name:        "Ayushman Bharat Pradhan Mantri Jan Arogya Yojana (AB-PMJAY)",
			Category:    "Health",
			Description: "Health insurance scheme providing ₹5 lakh health cover per family per year",
			Benefits:    "Free treatment up to ₹5 lakh per family per year at empanelled hospitals",
			Eligibility: "Families identified in Socio-Economic Caste Census (SECC) 2011",
			RequiresBPL: true,
			Process:     "No application required, eligible families get golden cards",
			Documents:   "Aadhaar card, SECC verification",
			URL:         "https://pmjay.gov.in/",
			Tags:        []string{"health", "insurance", "medical", "healthcare", "poor", "BPL"},
		},
		{
			Slug:        "beti-bachao-beti-padhao",
			Name:        "Beti Bachao Beti Padhao",
			Category:    "Women and Child",
			Description: "Scheme to address declining child sex ratio and promote girl child education",
			Benefits:    "Financial incentives for education, improved services for girls",
			Eligibility: "Girls from birth to education completion",
			MaxAge:      core.Int(25),
			Gender:      core.GenderFemale,
			Process:     "Through district administration and schools",
			Documents:   "Birth certificate, School enrollment proof, Bank account",
			URL:         "https://wcd.nic.in/bbbp-scheme",
			Tags:        []string{"girl child", "education", "women empowerment", "female", "beti"},
		},
		{
			Slug:        "pmay",
			Name:        "Pradhan Mantri Awas Yojana (PMAY)",
			Category:    "Housing",
			Description: "Housing for All scheme providing affordable housing to urban and rural poor",
			Benefits:    "Interest subsidy on home loans, direct financial assistance",
			Eligibility: "Families without pucca house belonging to EWS, LIG, MIG categories",
			MinAge:      core.Int(18),
			MaxAge:      core.Int(70),
			IncomeLimit: core.Int64(1800000),
			Process:     "Online through PMAY portal",
			Documents:   "Income certificate, Aadhaar, Bank account, Property documents",
			URL:         "https://pmaymis.gov.in/",
			Tags:        []string{"housing", "home loan", "subsidy", "poor", "shelter", "awas"},
		},
		{
			Slug:        "mgnrega",
			Name:        "Mahatma Gandhi National Rural Employment Guarantee Act (MGNREGA)",
			Category:    "Employment",
			Description: "Employment guarantee scheme providing 100 days of wage employment",
			Benefits:    "Guaranteed 100 days of employment per rural household per year",
			Eligibility: "Adult members of rural households willing to do unskilled manual work",
			MinAge:      core.Int(18),
			MaxAge:      core.Int(65),
			Process:     "Apply at Gram Panchayat with job card application",
			Documents:   "Aadhaar card, Address proof, Passport size photo",
			URL:         "https://nrega.nic.in/",
			Tags:        []string{"employment", "rural", "work", "wage", "job", "NREGA", "labor"},
		},
		{
			Slug:        "pmmy",
			Name:        "Pradhan Mantri Mudra Yojana (PMMY)",
			Category:    "Business",
			Description: "Micro-finance scheme for small businesses and entrepreneurs",
			Benefits:    "Collateral-free loans up to ₹10 lakh for micro-enterprises",
			Eligibility: "Individuals, proprietorship firms, partnership firms, companies",
			MinAge:      core.Int(18),
			MaxAge:      core.Int(65),
			Process:     "Apply through participating banks and financial institutions",
			Documents:   "Business plan, Identity proof, Address proof, Income proof",
			URL:         "https://www.mudra.org.in/",
			Tags:        []string{"loan", "business", "entrepreneur", "startup", "micro-finance", "mudra"},
		},
	}
}

// staticSource serves a fixed scheme list to the ingestion pipeline.
type staticSource []*core.Scheme

func (s staticSource) LoadAll(ctx context.Context) ([]*core.Scheme, []*core.Embedding, error) {
	return s, nil, nil
}
