package simflow_test

import (
	"github.com/aretw0/simflow/pkg/domain"
	"github.com/aretw0/simflow/pkg/dsl"
)

// homeForm is a small insurance questionnaire with one repeatable block.
func homeForm() *domain.Form {
	b := dsl.New("home").Title("Home")

	b.Block("intro").Priority(1).DefaultActive().
		Question("owner", "Do you own a vehicle? {{p}}").
		Select("p",
			dsl.Opt("yes", "Yes").NextBlock().AddBlock("vehicles"),
			dsl.Opt("no", "No").NextBlock(),
			dsl.Opt("quit", "Stop here").StopFlow(),
		)

	b.Block("vehicles").Priority(2).
		Question("fleet", "Your vehicles {{m}}").
		Manager("m", "car_{copyNumber}", "Add vehicle").LeadsTo(domain.NextBlock())

	b.Block("car_{copyNumber}").Priority(3).Blueprint().
		Question("car_{copyNumber}_kind", "Kind {{p}}").
		Select("p",
			dsl.Opt("ev", "Electric").To("car_{copyNumber}_battery"),
			dsl.Opt("gas", "Gas").NextBlock(),
		).
		Question("car_{copyNumber}_battery", "Battery kWh {{kwh}}").
		Input("kwh", "number").LeadsTo(domain.NextBlock()).Inline()

	b.Block("contact").Priority(10).DefaultActive().
		Question("email", "Email {{mail}}").
		Input("mail", "email").LeadsTo(domain.StopFlow()).EndOfForm()

	return b.MustBuild()
}
