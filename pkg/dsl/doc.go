/*
Package dsl provides a Go DSL for programmatically constructing simflow forms.

It allows developers to define branching questionnaires using a type-safe,
fluent builder instead of YAML or JSON files. This is particularly useful for
unit tests, for forms generated at runtime, and for leveraging IDE
autocompletion.

Example usage:

	b := dsl.New("home").Title("Home insurance")

	b.Block("intro").Priority(1).DefaultActive().
		Question("owner", "Do you own the property? {{p}}").
		Select("p",
			dsl.Opt("yes", "Yes").NextBlock().AddBlock("property"),
			dsl.Opt("no", "No").StopFlow(),
		)

	b.Block("property").Priority(2).
		Question("size", "Size in m2: {{m2}}").
		Input("m2", "number").Validate("required|min:1").LeadsTo(domain.NextBlock())

	form, err := b.Build()
	// ... pass form to simflow.New(form)
*/
package dsl
