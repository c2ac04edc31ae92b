/*
Package dsl provides a fluent builder for machine graphs.

States are referenced by name while building, so transitions may point at
states that are declared later, including the state itself. Build links the
names and returns the start state.

Example usage:

	b := dsl.New()

	b.State("start").
		Process(zoo.NewDummy()).
		On("seen").
		When(zoo.NewHasObjectClass("person")).
		Say("Hello!").
		Done()

	b.State("seen").
		On("start").
		When(zoo.NewHasObjectClass("dog")).
		Done()

	start, err := b.Build("start")
	if err != nil {
		log.Fatal(err)
	}
	data, err := fsm.Encode("greeter", start, zoo.Default())

Omitted element names are generated by the builder's fsm.Names, so the same
program always yields the same names.
*/
package dsl
