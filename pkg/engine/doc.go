// Package engine orchestrates record validation: schema version checking,
// per-field type validation, declarative rule execution, and computed
// field resolution.
//
// The pipeline is strictly linear and fail-fast between stages:
//
//	VersionCheck -> TypeValidation -> RuleExecution -> ComputedResolution
//
// Within the type validation and rule execution stages, all errors are
// collected (no intra-stage short-circuit); between stages, any error
// terminates the pipeline and becomes the exclusive error payload. The
// caller always receives either a complete success result or a complete,
// stage-specific error list — never a partial hybrid.
//
// All intermediate state (rule environments, error lists, resolution maps)
// is owned by a single Validate call and discarded on return; concurrent
// invocations share nothing and need no locking.
package engine
