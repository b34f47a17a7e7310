package bind_group_provider

import "testing"

func TestReleaseForgetsTexturesAndViews(t *testing.T) {
	p := NewBindGroupProvider("glow").(*bindGroupProvider)
	p.SetTexture(1, nil)
	p.SetTextureView(1, nil)
	p.BorrowTextureView(3, nil)

	if _, ok := p.textures[1]; !ok {
		t.Fatal("texture binding 1 not recorded")
	}
	if !p.borrowed[3] || p.borrowed[1] {
		t.Errorf("borrowed %v, want only binding 3", p.borrowed)
	}

	p.Release()
	if !p.Released() {
		t.Error("Released false after Release")
	}
	if len(p.textures) != 0 || len(p.textureViews) != 0 || len(p.borrowed) != 0 {
		t.Errorf("release left textures %d views %d borrowed %d", len(p.textures), len(p.textureViews), len(p.borrowed))
	}
	p.Release()
}

func TestSetTextureViewClearsBorrow(t *testing.T) {
	p := NewBindGroupProvider("pass").(*bindGroupProvider)
	p.BorrowTextureView(0, nil)
	p.SetTextureView(0, nil)
	if p.borrowed[0] {
		t.Error("owned view still marked borrowed")
	}
	if p.Texture(0) != nil {
		t.Error("texture set without SetTexture")
	}
}
