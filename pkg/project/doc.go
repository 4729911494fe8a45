// Package project validates a project directory and answers whether an
// import name refers to code that lives inside the project.
//
// A name is local when the project root (or its src/ directory) holds a
// package directory or a module file of that name, or when it matches the
// distribution name declared in pyproject.toml. Local detection runs before
// package resolution so first-party modules never surface as missing
// dependencies.
package project
