package post

// Attachments carries data resolved by sub-fetches after parsing.
type Attachments struct {
	// Rooms maps a room id to its fetched details.
	Rooms map[string]*AudioRoom
	// Playlists maps a VMAP URL to the video URLs it resolved to.
	Playlists map[string][]string
}

// Attach merges resolved attachments into every post of the tree. Rooms
// that were not resolved keep the placeholder taken from the card.
func (p *Post) Attach(att Attachments) {
	p.Walk(func(cur *Post) {
		if cur.AudioRoom != nil && cur.AudioRoom.ID != "" {
			if room, ok := att.Rooms[cur.AudioRoom.ID]; ok && room != nil {
				merged := *room
				merged.ID = cur.AudioRoom.ID
				cur.AudioRoom = &merged
			}
		}
		if cur.VmapURL != "" {
			cur.VideoURLs = append(cur.VideoURLs, att.Playlists[cur.VmapURL]...)
		}
	})
}
