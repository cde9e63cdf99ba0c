package server

import (
	"github.com/llehouerou/waves/internal/player"
	"github.com/llehouerou/waves/internal/song"
	"github.com/llehouerou/waves/internal/wire"
)

func songDTO(s song.Song) wire.SongDTO {
	return wire.SongDTO{
		Path:     s.Path,
		Title:    s.Title,
		Artist:   s.Artist,
		Album:    s.Album,
		Duration: s.Duration.Milliseconds(),
	}
}

func (ctx *AppContext) playerStateDTO() *wire.PlayerStateDTO {
	songs := ctx.player.Playlist().Songs()
	dtoSongs := make([]wire.SongDTO, len(songs))
	for i, s := range songs {
		dtoSongs[i] = songDTO(s)
	}

	var orderIndex *int
	if idx := ctx.player.Playlist().OrderIndex(); idx >= 0 {
		orderIndex = &idx
	}

	elapsed, _ := ctx.player.Position()
	next, repeat, shuffle := ctx.player.Toggles()

	var current *wire.SongDTO
	if s := ctx.player.CurrentSong(); s != nil {
		dto := songDTO(*s)
		current = &dto
	}

	status := "Stopped"
	switch ctx.player.State() {
	case player.Playing:
		status = "Playing"
	case player.Paused:
		status = "Paused"
	}

	return &wire.PlayerStateDTO{
		Current:        current,
		Elapsed:        elapsed.Milliseconds(),
		Status:         status,
		PlaylistStatus: ctx.player.PlaylistStatus().String(),
		Volume:         int(ctx.player.Volume() * 100),
		Next:           next,
		Repeat:         repeat,
		Shuffle:        shuffle,
		Playlist: wire.PlaylistDTO{
			Songs:      dtoSongs,
			Order:      ctx.player.Playlist().Order(),
			OrderIndex: orderIndex,
		},
	}
}
