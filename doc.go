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


// Package yojana matches people to government welfare schemes.
//
// A Database opens the scheme store, builds the in-memory index and exposes
// the matching engine:
//
//	db, err := yojana.NewDatabase("yojana-data/badger")
//	if err != nil {
//		return err
//	}
//	defer db.Close()
//
//	resp, err := db.Engine().SearchSchemes(ctx, "farmer income support", profile, match.Options{})
//
// Schemes enter the store through an ingestion pipeline, see
// Database.NewIngestionPipeline.
package yojana
