// SPDX-License-Identifier: quiltery License 1.0

package terror

type (
	Err struct {
		error
		Data map[string]any `json:"data"`
	}
)
