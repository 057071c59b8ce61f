// Copyright 2021 Optakt Labs OÜ
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package files

// DefaultConfig is the default configuration for the files service.
var DefaultConfig = Config{
	Extensions: []string{"txt", "pdf", "png", "jpg", "jpeg", "gif"},
	Immediate:  false,
}

// Config contains the configuration options for the files service.
type Config struct {
	Extensions []string
	Immediate  bool
}

// WithExtensions replaces the list of allowed file extensions.
func WithExtensions(extensions ...string) func(*Config) {
	return func(cfg *Config) {
		cfg.Extensions = extensions
	}
}

// WithImmediateSealing makes every upload seal a block of its own, with the
// content identifier of the upload as payload.
func WithImmediateSealing() func(*Config) {
	return func(cfg *Config) {
		cfg.Immediate = true
	}
}
