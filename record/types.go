// Package record defines the binary layout shared by every item stored in an
// arena buffer: the fixed header layout, the item type discriminators and the
// alignment rules readers use to skip from one record to the next without
// parsing payloads.
package record

// ItemType is the type discriminator stored in every item header.
type ItemType uint8

const (
	TypeUndefined ItemType = 0x00 // TypeUndefined marks an unset or invalid item.
	TypeNode      ItemType = 0x01 // TypeNode is a map node (point with coordinates).
	TypeWay       ItemType = 0x02 // TypeWay is an ordered list of node references.
	TypeRelation  ItemType = 0x03 // TypeRelation groups other entities with roles.
	TypeChangeset ItemType = 0x05 // TypeChangeset is an edit-session record.

	TypeTagList            ItemType = 0x11 // TypeTagList is a key/value tag collection sub-item.
	TypeWayNodeList        ItemType = 0x12 // TypeWayNodeList is a node reference list sub-item.
	TypeRelationMemberList ItemType = 0x13 // TypeRelationMemberList is a relation member list sub-item.
)

func (t ItemType) String() string {
	switch t {
	case TypeUndefined:
		return "Undefined"
	case TypeNode:
		return "Node"
	case TypeWay:
		return "Way"
	case TypeRelation:
		return "Relation"
	case TypeChangeset:
		return "Changeset"
	case TypeTagList:
		return "TagList"
	case TypeWayNodeList:
		return "WayNodeList"
	case TypeRelationMemberList:
		return "RelationMemberList"
	default:
		return "Unknown"
	}
}

// IsEntity reports whether the type is a top-level map entity, as opposed to a
// sub-item that only appears inside another item.
func (t ItemType) IsEntity() bool {
	switch t {
	case TypeNode, TypeWay, TypeRelation, TypeChangeset:
		return true
	default:
		return false
	}
}
