package layout

// walker carries the per-node bookkeeping of the Buchheim algorithm.
//
//	z: preliminary x
//	m: modifier applied to the subtree
//	c, s: change and shift accumulated by moveSubtree
//	t: thread to the next contour node
//	a: ancestor pointer; A: default ancestor of the children
type walker struct {
	node     *Node
	parent   *walker
	children []*walker
	i        int

	z, m, c, s float64
	t, a, A    *walker
}

// tidy assigns unit-separated X coordinates to every node under root.
func tidy(root *Node) {
	t := newWalker(root, nil, 0)
	sentinel := &walker{children: []*walker{t}}
	sentinel.a = sentinel
	t.parent = sentinel

	eachAfterWalker(t, firstWalk)
	sentinel.m = -t.z
	eachBeforeWalker(t, secondWalk)
}

func newWalker(n *Node, parent *walker, i int) *walker {
	w := &walker{node: n, parent: parent, i: i}
	w.a = w
	for j, c := range n.Children {
		w.children = append(w.children, newWalker(c, w, j))
	}
	return w
}

func eachAfterWalker(v *walker, fn func(*walker)) {
	for _, c := range v.children {
		eachAfterWalker(c, fn)
	}
	fn(v)
}

func eachBeforeWalker(v *walker, fn func(*walker)) {
	fn(v)
	for _, c := range v.children {
		eachBeforeWalker(c, fn)
	}
}

func walkerSeparation(a, b *walker) float64 {
	return separation(a.node, b.node)
}

// firstWalk computes the preliminary x of v once its children are placed.
func firstWalk(v *walker) {
	siblings := v.parent.children
	var w *walker
	if v.i > 0 {
		w = siblings[v.i-1]
	}

	if len(v.children) > 0 {
		executeShifts(v)
		mid := (v.children[0].z + v.children[len(v.children)-1].z) / 2
		if w != nil {
			v.z = w.z + walkerSeparation(v, w)
			v.m = v.z - mid
		} else {
			v.z = mid
		}
	} else if w != nil {
		v.z = w.z + walkerSeparation(v, w)
	}

	ancestor := v.parent.A
	if ancestor == nil {
		ancestor = siblings[0]
	}
	v.parent.A = apportion(v, w, ancestor)
}

// secondWalk turns preliminary positions into final ones by summing modifiers.
func secondWalk(v *walker) {
	v.node.X = v.z + v.parent.m
	v.m += v.parent.m
}

// apportion pushes the subtree of v right until its left contour clears the
// right contour of the subtrees placed before it.
func apportion(v, w, ancestor *walker) *walker {
	if w == nil {
		return ancestor
	}

	vip, vop := v, v
	vim := w
	vom := vip.parent.children[0]
	sip, sop := vip.m, vop.m
	sim, som := vim.m, vom.m

	for {
		vim = nextRight(vim)
		vip = nextLeft(vip)
		if vim == nil || vip == nil {
			break
		}
		vom = nextLeft(vom)
		vop = nextRight(vop)
		vop.a = v

		shift := vim.z + sim - vip.z - sip + walkerSeparation(vim, vip)
		if shift > 0 {
			moveSubtree(nextAncestor(vim, v, ancestor), v, shift)
			sip += shift
			sop += shift
		}
		sim += vim.m
		sip += vip.m
		som += vom.m
		sop += vop.m
	}

	if vim != nil && nextRight(vop) == nil {
		vop.t = vim
		vop.m += sim - sop
	}
	if vip != nil && nextLeft(vom) == nil {
		vom.t = vip
		vom.m += sip - som
		ancestor = v
	}
	return ancestor
}

func nextLeft(v *walker) *walker {
	if len(v.children) > 0 {
		return v.children[0]
	}
	return v.t
}

func nextRight(v *walker) *walker {
	if len(v.children) > 0 {
		return v.children[len(v.children)-1]
	}
	return v.t
}

func nextAncestor(vim, v, ancestor *walker) *walker {
	if vim.a.parent == v.parent {
		return vim.a
	}
	return ancestor
}

func moveSubtree(wm, wp *walker, shift float64) {
	change := shift / float64(wp.i-wm.i)
	wp.c -= change
	wp.s += shift
	wm.c += change
	wp.z += shift
	wp.m += shift
}

// executeShifts applies the shifts recorded by moveSubtree to v's children.
func executeShifts(v *walker) {
	var shift, change float64
	for i := len(v.children) - 1; i >= 0; i-- {
		w := v.children[i]
		w.z += shift
		w.m += shift
		change += w.c
		shift += w.s + change
	}
}
