package renderer

import (
	"fmt"

	"github.com/Faultbox/glbstage/internal/config"
)

const meshVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec2 aUV;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProjection;
uniform mat3 uNormalMatrix;

out vec3 vNormal;
out vec2 vUV;

void main() {
	vNormal = normalize(uNormalMatrix * aNormal);
	vUV = aUV;
	gl_Position = uProjection * uView * uModel * vec4(aPos, 1.0);
}
`

var meshFragmentShader = fmt.Sprintf(`
#version 410 core

#define MAX_LIGHTS %d

in vec3 vNormal;
in vec2 vUV;

uniform vec4 uBaseColor;
uniform sampler2D uTexture;
uniform bool uHasTexture;

uniform int uLightCount;
uniform vec3 uLightDir[MAX_LIGHTS];
uniform vec3 uLightColor[MAX_LIGHTS];
uniform vec3 uAmbient;
uniform vec3 uSky;
uniform vec3 uGround;

out vec4 FragColor;

void main() {
	vec3 n = normalize(vNormal);
	if (!gl_FrontFacing) {
		n = -n;
	}

	vec4 albedo = uBaseColor;
	if (uHasTexture) {
		albedo *= texture(uTexture, vUV);
	}

	vec3 light = uAmbient + mix(uGround, uSky, n.y * 0.5 + 0.5);
	for (int i = 0; i < uLightCount; i++) {
		light += uLightColor[i] * max(dot(n, uLightDir[i]), 0.0);
	}

	FragColor = vec4(albedo.rgb * light, albedo.a);
}
`, config.MaxDirectionalLights)

const lineVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;

uniform mat4 uViewProjection;

void main() {
	gl_Position = uViewProjection * vec4(aPos, 1.0);
}
`

const lineFragmentShader = `
#version 410 core

uniform vec3 uColor;

out vec4 FragColor;

void main() {
	FragColor = vec4(uColor, 1.0);
}
`
