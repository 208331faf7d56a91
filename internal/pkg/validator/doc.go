// Package validator validates request and policy structs through their
// `validate` tags and reports failures as a snake_case field → message map.
package validator
