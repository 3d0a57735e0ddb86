// Package ginja is a Jinja-style text template engine: a lexer, a
// Pratt/recursive-descent parser, and a tree-walking evaluator over a
// reference-counted value model, with template inheritance, conditionals,
// and loops.
//
// A minimal render:
//
//     env := ginja.NewEnvironment()
//     env.AddTemplate("greeting", "Hello {{ name }}!")
//     env.SetVar("name", ginja.NewString("Florian"))
//     out, err := env.Render("greeting")
//     if err != nil {
//         panic(err)
//     }
//     fmt.Println(out) // Output: Hello Florian!
//
// Templates loaded from a directory register one per file via LoadDir;
// errors accumulated while parsing or rendering are retrievable in order
// from Environment.CheckErrors.
package ginja
