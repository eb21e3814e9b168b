/*

Process of compilation

Program Text ->
	parse ->
Abstract Syntax Tree (ast) ->
	check ->
Typed Tree ->
	lower ->
Mid-level Representation (mir) ->
	analyze, optimize ->
Mid-level Representation (mir) ->
	codegen ->
Binary Object (obj)

This repository is the mir layer: the representation itself, its
textual rendering and its wire form. Lowering, analyses and codegen
live elsewhere and consume mir through the contracts of that package.

*/
package compiler
