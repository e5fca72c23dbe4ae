// Package entity provides builders and read views for the concrete map
// entities stored in arena buffers: nodes, ways and their tag and node-ref
// sub-collections.
//
// Entity builders are the legitimate direct users of the arena Builder: they
// decide each entity's fixed-field layout and which trailing collections
// exist, while the arena layer enforces alignment and size propagation. A
// typical construction:
//
//	buf, _ := arena.NewBuffer()
//	nb := entity.NewNodeBuilder(buf)
//	nb.SetID(4711)
//	nb.SetLocation(entity.LocationFromDegrees(13.3777, 52.5162))
//	nb.SetTimestamp(time.Now())
//	_ = nb.AddTags([]entity.Tag{{Key: "amenity", Value: "cafe"}})
//	item := nb.Finish() // closes the builder and commits the buffer
//
// Read views decode entities in place, without copying payloads:
//
//	for it := range buf.Items() {
//	    if it.Type() == record.TypeNode {
//	        node := entity.AsNode(it)
//	        fmt.Println(node.ID(), node.Location().LatDegrees())
//	    }
//	}
package entity
