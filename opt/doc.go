// Package opt implements the HLIR optimizer: a registry of named passes
// and a pipeline that runs pass lists with pause and resume checkpoints.
//
// A pass list is a sequence of tokens such as
//
//	-opt-fn-passes
//	-simplifycfg
//	-opt-mod-passes
//	-hlsl-hlemit
//	-inline
//	-hlsl-passes-pause
//
// Tokens after -opt-fn-passes form the function pipeline, which runs on
// every defined function before any module pass. Any other -opt- token
// switches to the module pipeline. The pause token must come last; it
// records a checkpoint in the module metadata so that a later invocation
// starting with -hlsl-passes-resume can continue where this one stopped.
package opt
