// Package irtext reads and writes the textual form of HLIR modules.
//
// The format is line oriented for readability but whitespace is not
// significant:
//
//	target "ps_6_0"
//	!hlsl.entry = "main"
//
//	global @g_Tex : texture2d
//
//	define float4 @main(float4 %pos : SV_Position) : SV_Target {
//	entry:
//	  %r = fmul float4 %pos, float4 2.0
//	  ret %r
//	}
//
// Comments run from ';' to the end of the line. Print produces the
// canonical form used by disassembly, so two modules print identically
// exactly when they are structurally equal.
package irtext
