// Copyright 2026 crossfold Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package split partitions a labeled dataset into class balanced folds.
//
// The number of instances of each class in each fold is fixed up front by a QuotaTable:
// every fold receives count/N instances of the class and the remainder goes to the
// lowest indexed folds. Instances are then visited once and each is sent to a fold drawn
// at random, weighted by how many more instances of its class that fold still needs.
// The result matches the quotas exactly while fold membership depends on the seed.
package split
