package class

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/joeycumines/go-classkit/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constant(v any) *value.Func {
	return value.F(func(*value.Call) any { return v })
}

func plusSuper(n int) *value.Func {
	return value.F(func(c *value.Call) any { return n + c.Super().(int) })
}

func call(t *testing.T, inst *Instance, name string, args ...any) any {
	t.Helper()
	v, err := inst.Call(name, args...)
	require.NoError(t, err)
	return v
}

// ===============================================
// Super calls
// ===============================================

func TestExtend_superChain(t *testing.T) {
	base := Define(value.Map{`m`: constant(1)})
	derived := base.Extend(value.Map{`m`: plusSuper(2)})
	again := derived.Extend(value.Map{`m`: plusSuper(2)})

	assert.Equal(t, 1, call(t, base.MustNew(), `m`))
	assert.Equal(t, 3, call(t, derived.MustNew(), `m`))
	assert.Equal(t, 5, call(t, again.MustNew(), `m`))

	assert.Same(t, base, derived.Parent())
	assert.Same(t, derived, again.Parent())
	assert.Nil(t, base.Parent())
}

func TestExtend_superReceivesReceiverAndArgs(t *testing.T) {
	base := Define(value.Map{`greet`: value.F(func(c *value.Call) any {
		return fmt.Sprintf(`%s says %v`, c.This.(*Instance).Get(`name`), c.Arg(0))
	})})
	derived := base.Extend(value.Map{`greet`: value.F(func(c *value.Call) any {
		return `loudly, ` + c.Super().(string)
	})})
	inst := derived.MustNew().Set(`name`, `rex`)
	assert.Equal(t, `loudly, rex says woof`, call(t, inst, `greet`, `woof`))
}

func TestExtend_mergesOptions(t *testing.T) {
	base := Define(value.Map{`options`: value.Map{`a`: 1, `nested`: value.Map{`x`: 1}}})
	derived := base.Extend(value.Map{`options`: value.Map{`b`: 2, `nested`: value.Map{`y`: 2}}})
	assert.Equal(t, value.Map{`a`: 1, `b`: 2, `nested`: value.Map{`x`: 1, `y`: 2}}, derived.MustNew().Get(`options`))
	assert.Equal(t, value.Map{`a`: 1, `nested`: value.Map{`x`: 1}}, base.MustNew().Get(`options`))
}

// ===============================================
// Non-mutation and visibility
// ===============================================

func TestExtend_doesNotMutateBase(t *testing.T) {
	base := Define(value.Map{`m`: constant(1), `n`: constant(`n`)})
	existing := base.MustNew()
	before := []any{call(t, existing, `m`), call(t, existing, `n`)}
	baseM, _ := base.Lookup(`m`)

	derived := base.Extend(value.Map{`m`: plusSuper(10), `extra`: constant(true)})

	assert.Equal(t, before, []any{call(t, existing, `m`), call(t, existing, `n`)})
	afterM, _ := base.Lookup(`m`)
	assert.Same(t, baseM, afterM)
	_, ok := base.Lookup(`extra`)
	assert.False(t, ok)

	inst := derived.MustNew()
	assert.Equal(t, 11, call(t, inst, `m`))
	assert.Equal(t, `n`, call(t, inst, `n`))
}

func TestDefine_copiesTable(t *testing.T) {
	table := value.Map{`m`: constant(1)}
	c := Define(table)
	table[`m`] = constant(2)
	assert.Equal(t, 1, call(t, c.MustNew(), `m`))
}

func TestImplement_visibleToExistingInstances(t *testing.T) {
	base := Define(value.Map{`m`: constant(1)})
	derived := base.Extend(value.Map{`m`: plusSuper(1)})
	existing := base.MustNew()
	existingDerived := derived.MustNew()

	_, err := existing.Call(`n`)
	require.ErrorIs(t, err, ErrNoSuchMethod)

	base.Implement(value.Map{`n`: constant(`new`)})

	assert.Equal(t, `new`, call(t, existing, `n`))
	assert.Equal(t, `new`, call(t, existingDerived, `n`))

	// overwrites without super wrapping, overridden methods keep their
	// definition-time super
	base.Implement(value.Map{`m`: constant(100)})
	assert.Equal(t, 100, call(t, existing, `m`))
	assert.Equal(t, 2, call(t, existingDerived, `m`))
}

func TestImplement_lastWriteWins(t *testing.T) {
	c := Define(nil)
	c.Implement(
		value.Map{`m`: constant(1), `a`: constant(`a`)},
		value.Map{`m`: constant(2)},
	)
	inst := c.MustNew()
	assert.Equal(t, 2, call(t, inst, `m`))
	assert.Equal(t, `a`, call(t, inst, `a`))
}

func TestImplement_concurrent(t *testing.T) {
	c := Define(nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.Implement(value.Map{fmt.Sprint(i): i})
		}()
		go func() {
			defer wg.Done()
			c.Lookup(fmt.Sprint(i))
		}()
	}
	wg.Wait()
	for i := 0; i < 8; i++ {
		v, ok := c.Lookup(fmt.Sprint(i))
		assert.True(t, ok)
		assert.Equal(t, i, v)
	}
}

// ===============================================
// Construction
// ===============================================

func TestNew_initialize(t *testing.T) {
	c := Define(value.Map{`initialize`: value.F(func(c *value.Call) any {
		c.This.(*Instance).Set(`args`, c.Args)
		return nil
	})})
	inst, err := c.New(1, `two`)
	require.NoError(t, err)
	assert.Equal(t, []any{1, `two`}, inst.Get(`args`))
	assert.Equal(t, value.Map{`args`: []any{1, `two`}}, inst.Fields())
}

func TestNew_noInit(t *testing.T) {
	var calls int
	c := Define(value.Map{`initialize`: value.F(func(*value.Call) any {
		calls++
		return nil
	})})
	_, err := c.New(NoInit)
	require.NoError(t, err)
	c.Template()
	assert.Equal(t, 0, calls)
	c.MustNew()
	assert.Equal(t, 1, calls)
}

func TestNew_initializeCallsSuper(t *testing.T) {
	base := Define(value.Map{`initialize`: value.F(func(c *value.Call) any {
		c.This.(*Instance).Set(`base`, c.Arg(0))
		return nil
	})})
	derived := base.Extend(value.Map{`initialize`: value.F(func(c *value.Call) any {
		c.This.(*Instance).Set(`derived`, true)
		return c.SuperWith(`from derived`)
	})})
	inst := derived.MustNew(`ignored`)
	assert.Equal(t, `from derived`, inst.Get(`base`))
	assert.Equal(t, true, inst.Get(`derived`))
}

func TestNew_constructionError(t *testing.T) {
	cause := errors.New(`bad config`)
	c := Define(value.Map{`initialize`: constant(cause)}, WithName(`Widget`))
	inst, err := c.New()
	assert.Nil(t, inst)
	var ce *ConstructionError
	require.ErrorAs(t, err, &ce)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, `Widget`, ce.Class)
	assert.EqualError(t, err, `class: Widget: initialize: bad config`)
	assert.Panics(t, func() { c.MustNew() })
}

func TestNew_panicPropagates(t *testing.T) {
	c := Define(value.Map{`initialize`: value.F(func(*value.Call) any { panic(`boom`) })})
	assert.PanicsWithValue(t, `boom`, func() { _, _ = c.New() })
}

// ===============================================
// Instances
// ===============================================

func TestInstance_kindAndIdentity(t *testing.T) {
	base := Define(nil, WithName(`Base`))
	derived := base.Extend(nil)
	other := Define(nil)
	inst := derived.MustNew()

	assert.Equal(t, value.KindInstance, value.Classify(inst))
	assert.True(t, inst.IsA(derived))
	assert.True(t, inst.IsA(base))
	assert.False(t, inst.IsA(other))
	assert.Same(t, derived, inst.Class())
	assert.Equal(t, `class.Instance`, inst.String())
	assert.Equal(t, `class.Instance(Base)`, base.MustNew().String())
}

func TestInstance_fieldsShadowProperties(t *testing.T) {
	c := Define(value.Map{`m`: constant(`class`), `data`: 1})
	inst := c.MustNew()
	assert.Equal(t, 1, inst.Get(`data`))
	inst.Set(`m`, constant(`instance`))
	assert.Equal(t, `instance`, call(t, inst, `m`))
	assert.Equal(t, `class`, call(t, c.MustNew(), `m`))
}

func TestInstance_callErrors(t *testing.T) {
	c := Define(value.Map{`data`: 1})
	inst := c.MustNew()
	_, err := inst.Call(`missing`)
	assert.ErrorIs(t, err, ErrNoSuchMethod)
	_, err = inst.Call(`data`)
	assert.ErrorIs(t, err, ErrNotCallable)
	assert.Contains(t, err.Error(), `numeric`)
	// capability built-ins are unavailable without the capability
	_, err = inst.Call(`addEvent`, `onX`, constant(nil))
	assert.ErrorIs(t, err, ErrNoSuchMethod)
	assert.Nil(t, inst.Events())
	assert.Nil(t, inst.Chain())
	assert.Nil(t, inst.Options())
}
