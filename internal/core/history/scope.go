package history

// Batched runs fn inside a batch named name. The batch is ended when fn
// returns a nil error and cancelled when fn returns an error or panics; a
// panic is re-raised after the cancel.
func Batched[T any](c *Coordinator, name string, fn func() (T, error)) (result T, err error) {
	b := c.StartBatch(name)
	defer func() {
		if r := recover(); r != nil {
			b.Cancel()
			panic(r)
		}
		if err != nil {
			b.Cancel()
			return
		}
		b.End()
	}()
	return fn()
}

// Do is Batched for functions that only return an error.
func (c *Coordinator) Do(name string, fn func() error) error {
	_, err := Batched(c, name, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}
