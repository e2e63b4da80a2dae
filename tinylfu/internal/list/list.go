// Package list implements a generic doubly linked list, in the manner of container/list.
package list

type Element[T any] struct {
	next, prev *Element[T]
	list       *List[T]
	Value      T
}

// List is a doubly linked list. The zero value is not usable; use New.
type List[T any] struct {
	root Element[T]
	len  int
}

func New[T any]() *List[T] {
	l := &List[T]{}
	l.root.next = &l.root
	l.root.prev = &l.root
	return l
}

func (l *List[T]) Len() int { return l.len }

// Back returns the last element, or nil.
func (l *List[T]) Back() *Element[T] {
	if l.len == 0 {
		return nil
	}
	return l.root.prev
}

func (l *List[T]) insert(e, at *Element[T]) *Element[T] {
	e.prev = at
	e.next = at.next
	e.prev.next = e
	e.next.prev = e
	e.list = l
	l.len++
	return e
}

func (l *List[T]) PushFront(v T) *Element[T] {
	return l.insert(&Element[T]{Value: v}, &l.root)
}

func (l *List[T]) Remove(e *Element[T]) T {
	if e.list == l {
		e.prev.next = e.next
		e.next.prev = e.prev
		e.next, e.prev, e.list = nil, nil, nil
		l.len--
	}
	return e.Value
}

func (l *List[T]) MoveToFront(e *Element[T]) {
	if e.list != l || l.root.next == e {
		return
	}
	e.prev.next = e.next
	e.next.prev = e.prev
	e.prev = &l.root
	e.next = l.root.next
	e.prev.next = e
	e.next.prev = e
}
