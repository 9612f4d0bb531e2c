// Package genx is a thin, provider-neutral layer over chat models that
// return structured output.
//
// A caller describes the expected object as a FuncTool (its JSON schema is
// inferred from a Go type), assembles prompts and messages with a
// ModelContextBuilder, and calls Generator.Invoke:
//
//	tool := genx.MustNewFuncTool[Answer]("answer", "Answer the question")
//	var mcb genx.ModelContextBuilder
//	mcb.PromptText("task", "...")
//	ans, _, err := genx.Invoke[Answer](ctx, gen, "openai/gpt-4o-mini", mcb.Build(), tool)
//
// OpenAIGenerator and GeminiGenerator implement Generator; the generators
// package routes model names to them, and modelloader builds them from
// configuration files.
//
// IsRetryable tells transient provider failures (throttling, server errors,
// timeouts, empty or malformed output) from permanent ones.
package genx
