// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package class builds constructible classes from property tables, with
// single inheritance ([Class.Extend]), in-place mixing ([Class.Implement]),
// and optional capabilities ([CapEvents], [CapChain], [CapOptions]).
//
// Each class has its own property table and an optional parent. Property
// lookup walks the parent chain only for names missing from a class's own
// table, and happens at call time, so Implement is visible to existing
// instances. Extend composes each property with the one it overrides via
// [value.Merge], fixing super calls at definition time:
//
//	animal := class.Define(value.Map{
//	    "speak": value.F(func(c *value.Call) any { return "..." }),
//	})
//	dog := animal.Extend(value.Map{
//	    "speak": value.F(func(c *value.Call) any { return "woof " + c.Super().(string) }),
//	})
//	rex, _ := dog.New()
//	rex.Call("speak") // "woof ...", nil
package class
