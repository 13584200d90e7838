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

package dataset

import "github.com/juju/errors"

var (
	// ErrMissingClassAttribute is returned when an operation needs a class attribute but
	// the class index is unset.
	ErrMissingClassAttribute = errors.New("class attribute is not set")
	// ErrNonNominalClass is returned when the class attribute is numeric.
	ErrNonNominalClass = errors.New("class attribute is not nominal")
	// ErrSchemaMismatch is returned when datasets or instances do not share a schema.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrMalformed is returned by the codecs for unparsable input.
	ErrMalformed = errors.New("malformed dataset")
)
